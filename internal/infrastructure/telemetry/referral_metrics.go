package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// AssignmentOutcome labels how an allocation attempt ended.
type AssignmentOutcome string

const (
	AssignmentOutcomeAssigned  AssignmentOutcome = "assigned"
	AssignmentOutcomeReused    AssignmentOutcome = "reused"
	AssignmentOutcomeExhausted AssignmentOutcome = "exhausted"
	AssignmentOutcomeFailed    AssignmentOutcome = "failed"
)

// ReferralMetrics tracks referral traffic: assignments, clicks,
// conversions, visits, and the health of the rotation. A nil
// *ReferralMetrics is valid and records nothing, so callers never have
// to guard their instrumentation.
type ReferralMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	assignmentTotal *Counter
	clickTotal      *Counter
	conversionTotal *Counter
	visitTotal      *Counter

	activeMembers  *Gauge
	availableSlots *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	rotationProvider RotationMetricsProvider
}

// RotationMetricsProvider provides rotation data for periodic metrics
// collection. This interface lets the telemetry layer query rotation
// state without depending on the referral domain directly.
type RotationMetricsProvider interface {
	// GetActiveMemberCount returns the number of members in the rotation
	GetActiveMemberCount(ctx context.Context) (int64, error)

	// GetAvailableSlotCount returns the total spare capacity across
	// active members
	GetAvailableSlotCount(ctx context.Context) (int64, error)
}

// ReferralMetricsConfig holds configuration for referral metrics.
type ReferralMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	CollectInterval  time.Duration // Default: 1 minute
	RotationProvider RotationMetricsProvider
}

// NewReferralMetrics creates a new ReferralMetrics instance.
func NewReferralMetrics(cfg ReferralMetricsConfig) (*ReferralMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rm := &ReferralMetrics{
		meter:            cfg.Meter,
		logger:           logger,
		stopChan:         make(chan struct{}),
		rotationProvider: cfg.RotationProvider,
	}

	var err error

	rm.assignmentTotal, err = NewCounter(
		cfg.Meter,
		"worldref_assignment_total",
		"Total number of allocation attempts by outcome",
		"{assignments}",
	)
	if err != nil {
		return nil, err
	}

	rm.clickTotal, err = NewCounter(
		cfg.Meter,
		"worldref_click_total",
		"Total number of referral link clicks",
		"{clicks}",
	)
	if err != nil {
		return nil, err
	}

	rm.conversionTotal, err = NewCounter(
		cfg.Meter,
		"worldref_conversion_total",
		"Total number of conversions",
		"{conversions}",
	)
	if err != nil {
		return nil, err
	}

	rm.visitTotal, err = NewCounter(
		cfg.Meter,
		"worldref_visit_total",
		"Total number of landing page visits",
		"{visits}",
	)
	if err != nil {
		return nil, err
	}

	rm.activeMembers, err = NewGauge(
		cfg.Meter,
		"worldref_active_members",
		"Number of members currently in the rotation",
		"{members}",
	)
	if err != nil {
		return nil, err
	}

	rm.availableSlots, err = NewGauge(
		cfg.Meter,
		"worldref_available_slots",
		"Total spare assignment capacity across active members",
		"{slots}",
	)
	if err != nil {
		return nil, err
	}

	return rm, nil
}

// RecordAssignment records the outcome of an allocation attempt.
func (rm *ReferralMetrics) RecordAssignment(ctx context.Context, outcome AssignmentOutcome) {
	if rm == nil {
		return
	}
	rm.assignmentTotal.Inc(ctx, AttrAssignmentOutcome.String(string(outcome)))
}

// RecordClick records one referral link click.
func (rm *ReferralMetrics) RecordClick(ctx context.Context) {
	if rm == nil {
		return
	}
	rm.clickTotal.Inc(ctx)
}

// RecordConversion records one conversion.
func (rm *ReferralMetrics) RecordConversion(ctx context.Context) {
	if rm == nil {
		return
	}
	rm.conversionTotal.Inc(ctx)
}

// RecordVisit records one landing page visit.
func (rm *ReferralMetrics) RecordVisit(ctx context.Context) {
	if rm == nil {
		return
	}
	rm.visitTotal.Inc(ctx)
}

// StartPeriodicCollection starts periodic collection of rotation gauges.
// This is non-blocking; use Stop() to stop collection.
func (rm *ReferralMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if rm == nil {
		return
	}
	rm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go rm.runPeriodicCollection(ctx, interval)
	})
}

func (rm *ReferralMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rm.collectRotationMetrics(ctx)

	for {
		select {
		case <-rm.stopChan:
			rm.logger.Info("Stopping periodic referral metrics collection")
			return
		case <-ctx.Done():
			rm.logger.Info("Context cancelled, stopping periodic referral metrics collection")
			return
		case <-ticker.C:
			rm.collectRotationMetrics(ctx)
		}
	}
}

func (rm *ReferralMetrics) collectRotationMetrics(ctx context.Context) {
	if rm.rotationProvider == nil {
		rm.logger.Debug("No rotation provider configured, skipping rotation metrics collection")
		return
	}

	active, err := rm.rotationProvider.GetActiveMemberCount(ctx)
	if err != nil {
		rm.logger.Warn("Failed to get active member count", zap.Error(err))
	} else {
		rm.activeMembers.Record(ctx, active)
	}

	slots, err := rm.rotationProvider.GetAvailableSlotCount(ctx)
	if err != nil {
		rm.logger.Warn("Failed to get available slot count", zap.Error(err))
	} else {
		rm.availableSlots.Record(ctx, slots)
	}
}

// Stop stops the periodic collection.
func (rm *ReferralMetrics) Stop() {
	if rm == nil {
		return
	}
	rm.stopOnce.Do(func() {
		close(rm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewReferralMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
