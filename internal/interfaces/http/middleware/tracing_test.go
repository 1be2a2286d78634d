package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newSpanRecorder installs a recording tracer provider for the test.
func newSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (string, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value.AsString(), true
		}
	}
	return "", false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := newSpanRecorder(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "worldref-test"}))
	router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_NamesSpansByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := newSpanRecorder(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "worldref-test"}))
	router.GET("/r/:code", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": c.Param("code")})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/r/alice2026", nil))
	require.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	assert.Equal(t, "GET /r/:code", spans[0].Name())
}

func TestSpanEnricher(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := newSpanRecorder(t)

	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "worldref-test"}))
	router.Use(SpanEnricher())
	// Stand-in for the JWT middleware
	router.Use(func(c *gin.Context) {
		c.Set(JWTAccountIDKey, "7c9a1c6e-0000-4000-8000-000000000001")
		c.Set(JWTProviderKey, "world_id")
		c.Next()
	})
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	span := spans[0]

	requestID, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-42", requestID)

	accountID, ok := spanAttr(span, "account_id")
	require.True(t, ok)
	assert.Equal(t, "7c9a1c6e-0000-4000-8000-000000000001", accountID)

	provider, ok := spanAttr(span, "auth.provider")
	require.True(t, ok)
	assert.Equal(t, "world_id", provider)
}

func TestSpanEnricher_AnonymousRequestsCarryNoIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := newSpanRecorder(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "worldref-test"}))
	router.Use(SpanEnricher())
	router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	spans := sr.Ended()
	require.NotEmpty(t, spans)

	_, ok := spanAttr(spans[0], "account_id")
	assert.False(t, ok)
	_, ok = spanAttr(spans[0], "auth.provider")
	assert.False(t, ok)
}

func TestSpanRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("prefers the context value over the header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/stats", nil)
		c.Request.Header.Set("X-Request-ID", "header-id")
		c.Set("request_id", "context-id")

		assert.Equal(t, "context-id", spanRequestID(c))
	})

	t.Run("falls back to the header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/stats", nil)
		c.Request.Header.Set("X-Request-ID", "header-id")

		assert.Equal(t, "header-id", spanRequestID(c))
	})

	t.Run("truncates oversized headers", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/stats", nil)
		c.Request.Header.Set("X-Request-ID", strings.Repeat("x", 500))

		assert.Len(t, spanRequestID(c), MaxRequestIDLength)
	})
}

func TestSpanErrorMarker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(t *testing.T, status int) sdktrace.ReadOnlySpan {
		sr := newSpanRecorder(t)

		router := gin.New()
		router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "worldref-test"}))
		router.Use(SpanErrorMarker())
		router.GET("/stats", func(c *gin.Context) {
			c.Status(status)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
		require.Equal(t, status, w.Code)

		spans := sr.Ended()
		require.NotEmpty(t, spans)
		return spans[0]
	}

	t.Run("successful responses stay unset", func(t *testing.T) {
		span := serve(t, http.StatusOK)
		assert.NotEqual(t, codes.Error, span.Status().Code)
	})

	t.Run("not found marks the span", func(t *testing.T) {
		span := serve(t, http.StatusNotFound)
		assert.Equal(t, codes.Error, span.Status().Code)
		assert.Equal(t, "Not Found", span.Status().Description)
	})

	t.Run("server errors mark the span", func(t *testing.T) {
		span := serve(t, http.StatusInternalServerError)
		assert.Equal(t, codes.Error, span.Status().Code)
	})
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "worldref-backend", cfg.ServiceName)
}
