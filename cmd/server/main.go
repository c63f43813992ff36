package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/bazaar/backend/internal/application/catalog"
	commissionapp "github.com/bazaar/backend/internal/application/commission"
	orderapp "github.com/bazaar/backend/internal/application/order"
	payoutapp "github.com/bazaar/backend/internal/application/payout"
	routingapp "github.com/bazaar/backend/internal/application/routing"
	sellerapp "github.com/bazaar/backend/internal/application/seller"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/bazaar/backend/internal/infrastructure/cache"
	"github.com/bazaar/backend/internal/infrastructure/config"
	"github.com/bazaar/backend/internal/infrastructure/event"
	"github.com/bazaar/backend/internal/infrastructure/logger"
	"github.com/bazaar/backend/internal/infrastructure/persistence"
	"github.com/bazaar/backend/internal/infrastructure/telemetry"
	"github.com/bazaar/backend/internal/interfaces/http/handler"
	"github.com/bazaar/backend/internal/interfaces/http/middleware"
	"github.com/bazaar/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Bazaar Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
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

	// Initialize telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meterProvider.Meter("bazaar.business"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		}
	}

	// Generation runs are serialized via Redis; a single-instance in-memory
	// guard keeps the service usable when Redis is unreachable
	var runGuard shared.RunGuard
	redisGuard, err := cache.NewRedisRunGuard(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-process run guard", zap.Error(err))
		runGuard = cache.NewInMemoryRunGuard()
	} else {
		runGuard = redisGuard
	}
	defer func() {
		if err := runGuard.Close(); err != nil {
			log.Error("Error closing run guard", zap.Error(err))
		}
	}()

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	payoutRepo := persistence.NewGormPayoutRepository(db.DB)
	listingRepo := persistence.NewGormListingRepository(db.DB)
	sellerRepo := persistence.NewGormSellerRepository(db.DB)
	perfRepo := persistence.NewGormPerformanceRepository(db.DB)
	policyRepo := persistence.NewGormCommissionPolicyRepository(db.DB)

	// Initialize application services
	routingService := routingapp.NewRoutingService(listingRepo, perfRepo, policyRepo)
	orderService := orderapp.NewOrderService(orderRepo, listingRepo, routingService, log)
	orderService.SetPayoutHold(cfg.Settlement.PayoutHold)
	payoutService := payoutapp.NewPayoutService(payoutRepo, sellerRepo, runGuard, log)
	payoutService.SetGuardTTL(cfg.Settlement.GenerateGuardTTL)
	policyService := commissionapp.NewPolicyService(policyRepo)
	listingService := catalogapp.NewListingService(listingRepo)
	sellerService := sellerapp.NewSellerService(sellerRepo, perfRepo)

	if businessMetrics != nil {
		routingService.SetMetrics(businessMetrics)
		orderService.SetMetrics(businessMetrics)
		payoutService.SetMetrics(businessMetrics)
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Cancelling an order locked into a live batch recomputes that batch
	orderCancelledHandler := payoutapp.NewOrderCancelledHandler(payoutRepo, log)
	eventBus.Subscribe(orderCancelledHandler)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	orderService.SetEventPublisher(eventBus)
	payoutService.SetEventPublisher(eventBus)
	policyService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	quoteHandler := handler.NewQuoteHandler(routingService)
	orderHandler := handler.NewOrderHandler(orderService)
	payoutHandler := handler.NewPayoutHandler(payoutService)
	policyHandler := handler.NewCommissionPolicyHandler(policyService)
	listingHandler := handler.NewListingHandler(listingService)
	sellerHandler := handler.NewSellerHandler(sellerService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
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

	// Middleware stack: request ID first so recovery and logging can tag
	// their output, tracing and metrics last so they see the final status
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Telemetry.Enabled,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	quoteRoutes := router.NewDomainGroup("routing", "/quotes")
	quoteRoutes.POST("", quoteHandler.Create)

	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Place)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.GET("/number/:order_number", orderHandler.GetByOrderNumber)
	orderRoutes.POST("/:id/transition", orderHandler.Transition)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
	orderRoutes.POST("/:id/lines/:line_id/accept", orderHandler.AcceptLine)

	payoutRoutes := router.NewDomainGroup("payouts", "/payouts")
	payoutRoutes.POST("/generate", payoutHandler.Generate)
	payoutRoutes.GET("", payoutHandler.List)
	payoutRoutes.GET("/:id", payoutHandler.GetByID)
	payoutRoutes.PATCH("/:id/status", payoutHandler.UpdateStatus)
	payoutRoutes.POST("/:id/adjustments", payoutHandler.Adjust)

	policyRoutes := router.NewDomainGroup("commission", "/commission-policy")
	policyRoutes.GET("", policyHandler.Get)
	policyRoutes.PUT("", policyHandler.Update)

	listingRoutes := router.NewDomainGroup("catalog", "/listings")
	listingRoutes.POST("", listingHandler.Create)
	listingRoutes.GET("/:id", listingHandler.GetByID)
	listingRoutes.PATCH("/:id", listingHandler.Update)

	sellerRoutes := router.NewDomainGroup("sellers", "/sellers")
	sellerRoutes.POST("", sellerHandler.Register)
	sellerRoutes.GET("/:id", sellerHandler.GetByID)
	sellerRoutes.POST("/:id/approve", sellerHandler.Approve)
	sellerRoutes.POST("/:id/suspend", sellerHandler.Suspend)
	sellerRoutes.PUT("/:id/performance", sellerHandler.RecordPerformance)
	sellerRoutes.GET("/:id/listings", listingHandler.ListBySeller)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(quoteRoutes).
		Register(orderRoutes).
		Register(payoutRoutes).
		Register(policyRoutes).
		Register(listingRoutes).
		Register(sellerRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
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

// healthHandler reports process and database health
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
