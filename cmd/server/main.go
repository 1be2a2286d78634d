package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	identityapp "github.com/worldref/backend/internal/application/identity"
	referralapp "github.com/worldref/backend/internal/application/referral"
	"github.com/worldref/backend/internal/infrastructure/auth"
	"github.com/worldref/backend/internal/infrastructure/cache"
	"github.com/worldref/backend/internal/infrastructure/config"
	"github.com/worldref/backend/internal/infrastructure/event"
	"github.com/worldref/backend/internal/infrastructure/logger"
	"github.com/worldref/backend/internal/infrastructure/persistence"
	"github.com/worldref/backend/internal/infrastructure/telemetry"
	"github.com/worldref/backend/internal/interfaces/http/handler"
	"github.com/worldref/backend/internal/interfaces/http/middleware"
	"github.com/worldref/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting WorldRef Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := openDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	ctx := context.Background()
	tel, err := setupTelemetry(ctx, cfg, db, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer tel.shutdown(log)

	// Every domain event also lands in the audit log.
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Subscribe(event.EventTypeAll, event.NewAuditLogHandler(log)); err != nil {
		log.Fatal("Failed to subscribe audit handler", zap.Error(err))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	jwtService := auth.NewJWTService(cfg.JWT)
	handlers, err := buildHandlers(cfg, db, eventBus, tel.metrics, jwtService, log)
	if err != nil {
		log.Fatal("Failed to wire application services", zap.Error(err))
	}

	engine, authMW := newEngine(cfg, db, tel, jwtService, log)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAll(r, handlers, authMW...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openDatabase connects GORM through the zap-backed query logger.
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	return persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
}

// telemetryStack groups the providers so shutdown happens as one unit.
type telemetryStack struct {
	tracer  *telemetry.TracerProvider
	meter   *telemetry.MeterProvider
	metrics *telemetry.ReferralMetrics
	enabled bool
}

func setupTelemetry(ctx context.Context, cfg *config.Config, db *persistence.Database, log *zap.Logger) (*telemetryStack, error) {
	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, err
	}

	// Query spans use the global tracer provider, so registration waits
	// until tracing is configured.
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		return nil, err
	}

	meter, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, err
	}

	metrics, err := telemetry.NewReferralMetrics(telemetry.ReferralMetricsConfig{
		Meter:            meter.Meter("worldref-backend"),
		Logger:           log,
		RotationProvider: persistence.NewGormRotationMetricsProvider(db.DB),
	})
	if err != nil {
		return nil, err
	}
	if cfg.Telemetry.Enabled {
		metrics.StartPeriodicCollection(ctx, time.Minute)
	}

	return &telemetryStack{
		tracer:  tracer,
		meter:   meter,
		metrics: metrics,
		enabled: cfg.Telemetry.Enabled,
	}, nil
}

func (t *telemetryStack) shutdown(log *zap.Logger) {
	if t.enabled {
		t.metrics.Stop()
	}
	if err := t.meter.Shutdown(context.Background()); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := t.tracer.Shutdown(context.Background()); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
}

// buildHandlers wires the repositories, caches and application
// services into the HTTP handler set.
func buildHandlers(cfg *config.Config, db *persistence.Database, eventBus *event.InMemoryEventBus, metrics *telemetry.ReferralMetrics, jwtService *auth.JWTService, log *zap.Logger) (router.Handlers, error) {
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	clickRepo := persistence.NewGormClickRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Visit counter and stats cache, Redis-backed with in-memory fallback.
	cacheFactory := cache.NewCacheFactory(cfg.Redis, cache.WithLogger(log))
	visitCounter, err := cacheFactory.CreateVisitCounter()
	if err != nil {
		return router.Handlers{}, err
	}
	statsCache, err := cacheFactory.CreateStatsCache()
	if err != nil {
		return router.Handlers{}, err
	}

	rewardAmount, err := decimal.NewFromString(cfg.Referral.RewardAmount)
	if err != nil {
		return router.Handlers{}, err
	}

	resolverService := identityapp.NewResolverService(accountRepo, jwtService, log)
	directoryService := referralapp.NewDirectoryService(memberRepo, accountRepo, log)
	allocatorService := referralapp.NewAllocatorService(txScope, referralapp.AllocatorServiceConfig{
		RewardAmount: rewardAmount,
		ReuseWindow:  cfg.Referral.ReuseWindow,
	}, metrics, log)
	trackerService := referralapp.NewTrackerService(memberRepo, clickRepo, visitCounter, metrics, log)
	statsService := referralapp.NewStatsService(
		memberRepo, assignmentRepo, clickRepo, visitCounter, statsCache,
		referralapp.StatsServiceConfig{
			CacheTTL:         cfg.Referral.StatsCacheTTL,
			RecentClickLimit: cfg.Referral.RecentClickLimit,
		}, log)

	resolverService.SetEventPublisher(eventBus)
	directoryService.SetEventPublisher(eventBus)
	allocatorService.SetEventPublisher(eventBus)
	trackerService.SetEventPublisher(eventBus)

	return router.Handlers{
		Auth:     handler.NewAuthHandler(resolverService),
		Member:   handler.NewMemberHandler(directoryService),
		Referral: handler.NewReferralHandler(allocatorService, trackerService),
		Tracker:  handler.NewTrackerHandler(trackerService, cfg.Referral.RedirectFallback),
		Stats:    handler.NewStatsHandler(statsService),
		System:   handler.NewSystemHandler(),
	}, nil
}

// newEngine assembles the gin engine and its middleware stack. The
// returned extra middleware guards the sign-in endpoints.
func newEngine(cfg *config.Config, db *persistence.Database, tel *telemetryStack, jwtService *auth.JWTService, log *zap.Logger) (*gin.Engine, []gin.HandlerFunc) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Ordering: request ID first so recovery and logging can tag their
	// entries, body limit before any handler reads input, tracing and
	// metrics around everything rate limiting may reject.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if tel.enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanEnricher())
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.HTTPMetricsWithMeter(tel.meter.Meter("worldref-backend"), true))
	}

	var authMW []gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))

		// Sign-in attempts draw from their own, much smaller budget.
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authMW = append(authMW, middleware.AuthRateLimit(authLimiter))

		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.Int("auth_requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("auth_window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	// Health check lives outside API versioning.
	engine.GET("/health", healthHandler(db))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	return engine, authMW
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
