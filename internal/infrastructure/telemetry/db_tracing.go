package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database query tracing.
type DBTracingConfig struct {
	Enabled    bool // register the otelgorm plugin
	LogFullSQL bool // include query parameters in spans, dev only
}

// DefaultDBTracingConfig returns the secure defaults: tracing off and
// query parameters excluded.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:    false,
		LogFullSQL: false,
	}
}

// RegisterDBTracing attaches the otelgorm plugin to a GORM DB so every
// query produces a span under the active trace. Spans come from the
// global tracer provider, so this must run after tracing is set up.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName("postgresql"),
	}
	if !cfg.LogFullSQL {
		// Query parameters can carry user data, keep them out of spans
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled", zap.Bool("log_full_sql", cfg.LogFullSQL))
	return nil
}
