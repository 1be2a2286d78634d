// Package middleware provides HTTP middleware for the referral service.
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/worldref/backend/internal/infrastructure/telemetry"
)

// HTTPMetricsConfig holds configuration for the HTTP metrics middleware.
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	ServiceName   string
	Enabled       bool
}

// DefaultHTTPMetricsConfig returns default HTTP metrics configuration.
func DefaultHTTPMetricsConfig() HTTPMetricsConfig {
	return HTTPMetricsConfig{
		ServiceName: "worldref-backend",
		Enabled:     true,
	}
}

// httpMetrics bundles the per-request instruments.
type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	requestSize     *telemetry.Histogram
	responseSize    *telemetry.Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := telemetry.NewCounter(
		meter,
		"http_server_request_total",
		"Total number of HTTP requests",
		"{request}",
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	sizeBuckets := []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}
	requestSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size distribution in bytes",
		Unit:        "By",
		Boundaries:  sizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	responseSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		Boundaries:  append(sizeBuckets, 5000000),
	})
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestSize:     requestSize,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics returns a middleware recording request count, latency,
// request and response sizes, and in-flight requests. Disabled or broken
// metric setup degrades to a pass-through.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter("http.server"), true)
}

// HTTPMetricsWithMeter builds the metrics middleware from an existing
// meter, which also keeps tests free of provider plumbing.
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	instruments, err := newHTTPMetrics(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		requestSize := c.Request.ContentLength

		instruments.activeRequests.Add(ctx, 1)
		c.Next()
		instruments.activeRequests.Add(ctx, -1)

		recordRequest(ctx, instruments, requestSnapshot{
			method:       c.Request.Method,
			route:        routePattern(c),
			statusCode:   c.Writer.Status(),
			accountID:    metricsAccountID(c),
			duration:     time.Since(start),
			requestSize:  requestSize,
			responseSize: c.Writer.Size(),
		})
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}

type requestSnapshot struct {
	method       string
	route        string
	statusCode   int
	accountID    string
	duration     time.Duration
	requestSize  int64
	responseSize int
}

func recordRequest(ctx context.Context, instruments *httpMetrics, snap requestSnapshot) {
	countAttrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(snap.method),
		telemetry.AttrHTTPRoute.String(snap.route),
		telemetry.AttrHTTPStatusCode.Int(snap.statusCode),
	}
	if snap.accountID != "" {
		countAttrs = append(countAttrs, telemetry.AttrAccountID.String(snap.accountID))
	}
	instruments.requestTotal.Inc(ctx, countAttrs...)

	// Latency and sizes carry only method and route to keep cardinality low
	baseAttrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(snap.method),
		telemetry.AttrHTTPRoute.String(snap.route),
	}
	instruments.requestDuration.RecordDuration(ctx, snap.duration, baseAttrs...)

	if snap.requestSize > 0 {
		instruments.requestSize.Record(ctx, float64(snap.requestSize), baseAttrs...)
	}
	if snap.responseSize > 0 {
		instruments.responseSize.Record(ctx, float64(snap.responseSize), baseAttrs...)
	}
}

// routePattern returns the matched route pattern rather than the raw
// path, so /r/abc123 and /r/xyz789 land in one series.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

func metricsAccountID(c *gin.Context) string {
	if v, exists := c.Get(JWTAccountIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
