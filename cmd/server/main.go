package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	pnlapp "github.com/sewline/backend/internal/application/pnl"
	receivingapp "github.com/sewline/backend/internal/application/receiving"
	"github.com/sewline/backend/internal/domain/costing"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
	"github.com/sewline/backend/internal/infrastructure/cache"
	"github.com/sewline/backend/internal/infrastructure/config"
	"github.com/sewline/backend/internal/infrastructure/event"
	"github.com/sewline/backend/internal/infrastructure/logger"
	"github.com/sewline/backend/internal/infrastructure/persistence"
	"github.com/sewline/backend/internal/infrastructure/telemetry"
	"github.com/sewline/backend/internal/interfaces/http/handler"
	"github.com/sewline/backend/internal/interfaces/http/middleware"
	"github.com/sewline/backend/internal/interfaces/http/router"
)

//	@title			Sewline Backend API
//	@version		1.0
//	@description	Order cost allocation and P&L engine for garment manufacturing

//	@contact.name	API Support
//	@contact.url	https://github.com/sewline/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	// Mirror log output to the OTLP collector when the log bridge is on.
	// The bridged logger replaces log before any component captures it.
	telemetryCtx := context.Background()
	logsProvider, err := telemetry.NewLoggerProvider(telemetryCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() {
		if err := logsProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down log export", zap.Error(err))
		}
	}()
	if logsProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: logsProvider,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore,
			zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	// Continuous profiling; a disabled profiler is a no-op
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiling.Enabled,
		ServerAddress:   cfg.Profiling.ServerAddress,
		ApplicationName: cfg.App.Name,
		AuthUser:        cfg.Profiling.AuthUser,
		AuthPassword:    cfg.Profiling.AuthPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	log.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("base_currency", cfg.App.BaseCurrency),
	)

	// Initialize database with SQL logging routed through zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabase(&cfg.Database, log, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	// Initialize telemetry (metrics + tracing); both degrade to no-ops when disabled
	meterProvider, err := telemetry.NewMeterProvider(telemetryCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	tracerProvider, err := telemetry.NewTracerProvider(telemetryCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     1.0,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Span profiles join CPU profiles to trace spans; needs both sides running
	if tracerProvider.IsEnabled() && profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Error("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Database observability: spans per statement plus pool and latency metrics
	if cfg.Telemetry.Enabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:            true,
			SlowQueryThreshold: cfg.Telemetry.SlowQueryThreshold,
			DBName:             cfg.Database.DBName,
		}, log)
		if err := dbTracing.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.Enabled,
		SlowQueryThreshold: cfg.Telemetry.SlowQueryThreshold,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(telemetryCtx)
		defer dbMetrics.Stop()
	}

	// Business metrics for receiving and P&L operations
	var receivingMetrics receivingapp.Metrics
	var pnlMetrics pnlapp.Metrics
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meterProvider.Meter("business"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		receivingMetrics = businessMetrics
		pnlMetrics = businessMetrics
	}

	// Initialize repositories
	supplierOrderRepo := persistence.NewGormSupplierOrderRepository(db.DB)
	goodsReceiptRepo := persistence.NewGormGoodsReceiptRepository(db.DB)
	customerOrderRepo := persistence.NewGormCustomerOrderRepository(db.DB)
	customerInvoiceRepo := persistence.NewGormCustomerInvoiceRepository(db.DB)
	costEntryRepo := persistence.NewGormOrderCostEntryRepository(db.DB)
	productionOrderRepo := persistence.NewGormProductionOrderRepository(db.DB)
	receivingUoW := persistence.NewGormReceivingUnitOfWork(db.DB)

	// Report cache: nil means caching is disabled and every report is recomputed
	reportCache, err := cache.NewReportCacheFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize report cache", zap.Error(err))
	}

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Goods receipts and customer invoices change computed P&L, so both
	// invalidate the cached period reports
	if reportCache != nil {
		idempotencyStore := cache.NewInMemoryIdempotencyStore()
		defer idempotencyStore.Close()

		cacheInvalidator := pnlapp.NewCacheInvalidator(reportCache, log,
			pnlapp.WithIdempotencyStore(idempotencyStore))
		eventBus.Subscribe(cacheInvalidator)
		log.Info("Report cache invalidation registered",
			zap.Strings("event_types", cacheInvalidator.EventTypes()),
		)
	}

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	allocator := costing.NewReceivingAllocator(log)
	receivingService := receivingapp.NewService(
		supplierOrderRepo,
		goodsReceiptRepo,
		customerOrderRepo,
		allocator,
		receivingUoW,
		eventBus,
		receivingMetrics,
		valueobject.Currency(cfg.App.BaseCurrency),
		log,
	)
	orderPnLService := pnlapp.NewOrderPnLService(
		customerOrderRepo,
		customerInvoiceRepo,
		costEntryRepo,
		productionOrderRepo,
		valueobject.Currency(cfg.App.BaseCurrency),
		pnlMetrics,
		log,
	)
	periodPnLService := pnlapp.NewPeriodPnLService(
		customerOrderRepo,
		customerInvoiceRepo,
		costEntryRepo,
		productionOrderRepo,
		orderPnLService,
		reportCache,
		log,
	)

	// Initialize HTTP handlers
	receivingHandler := handler.NewReceivingHandler(receivingService)
	pnlHandler := handler.NewPnLHandler(orderPnLService, periodPnLService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Throttle per client IP (optional)
	// 8. Tracing + metrics + profiling labels
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Customer orders: P&L per order, with optional per-color drill-down
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.GET("/:id/pnl", pnlHandler.GetOrderPnL)

	// Procurement: goods receipts against supplier orders
	procurementRoutes := router.NewDomainGroup("procurement", "/supplier-orders")
	procurementRoutes.POST("/:id/receipts", receivingHandler.RecordReceipt)

	// Period P&L reports
	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/pnl", pnlHandler.GetPeriodReport)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(orderRoutes).
		Register(procurementRoutes).
		Register(reportRoutes).
		Register(systemRoutes)

	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
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
