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

	adminapp "github.com/mangodeliveries/backend/internal/application/admin"
	contractapp "github.com/mangodeliveries/backend/internal/application/contract"
	identityapp "github.com/mangodeliveries/backend/internal/application/identity"
	pricingapp "github.com/mangodeliveries/backend/internal/application/pricing"
	"github.com/mangodeliveries/backend/internal/domain/contract"
	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/pricing"
	"github.com/mangodeliveries/backend/internal/infrastructure/appraisal"
	"github.com/mangodeliveries/backend/internal/infrastructure/auth"
	"github.com/mangodeliveries/backend/internal/infrastructure/cache"
	"github.com/mangodeliveries/backend/internal/infrastructure/config"
	"github.com/mangodeliveries/backend/internal/infrastructure/esi"
	"github.com/mangodeliveries/backend/internal/infrastructure/logger"
	"github.com/mangodeliveries/backend/internal/infrastructure/notify"
	"github.com/mangodeliveries/backend/internal/infrastructure/persistence"
	"github.com/mangodeliveries/backend/internal/infrastructure/telemetry"
	"github.com/mangodeliveries/backend/internal/interfaces/http/handler"
	"github.com/mangodeliveries/backend/internal/interfaces/http/middleware"
	"github.com/mangodeliveries/backend/internal/interfaces/http/router"
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
		_ = log.Sync()
	}()

	log.Info("Starting Mango Deliveries backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// Initialize Redis for login state and rate limiting
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	stateStore := cache.NewRedisStateStore(redisClient)

	// Initialize telemetry
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if tracerProvider.IsEnabled() {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.Driver, log); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Upstream clients
	esiClient := esi.NewClient(cfg.ESI)
	appraisalClient := appraisal.NewClient(cfg.Appraisal)

	// Notification sinks, skipped when unconfigured
	sinks := []contract.NotificationSink{
		notify.NewDiscordSink(cfg.Notify.DiscordWebhookURL, cfg.Notify.Timeout),
		notify.NewNtfySink(cfg.Notify.NtfyURL, cfg.Notify.Timeout),
	}

	// Initialize repositories
	characterRepo := persistence.NewGormCharacterRepository(db.DB)
	banRepo := persistence.NewGormBanRepository(db.DB)
	allowRepo := persistence.NewGormAllowlistRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	auditTrail := persistence.NewGormAuditTrail(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	destinationRepo := persistence.NewGormDestinationRepository(db.DB)
	exclusionRepo := persistence.NewGormExclusionRepository(db.DB)

	// Domain services
	gate := identity.NewGate(characterRepo, banRepo, allowRepo)
	volumeLimit := persistence.NewSettingsVolumeLimit(settingsRepo)
	appraisalQuoter := pricing.NewAppraisalQuoter(appraisalClient, exclusionRepo, volumeLimit)
	routeQuoter := pricing.NewRouteQuoter(esiClient)

	// Application services
	loginService := identityapp.NewLoginService(esiClient, characterRepo, gate, stateStore, log)
	contractService := contractapp.NewService(contractRepo, auditTrail, gate, appraisalQuoter, sinks, log)
	pricingService := pricingapp.NewService(gate, appraisalQuoter, routeQuoter, log)
	adminService := adminapp.NewService(gate, characterRepo, banRepo, allowRepo, settingsRepo, destinationRepo, exclusionRepo, log)

	sessionCodec := auth.NewSessionCodec(cfg.Session)

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

	// Middleware stack, in order: request IDs, panic recovery, request
	// logging, tracing, CORS, rate limiting, then session resolution.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	if tracerProvider.IsEnabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := cache.NewRedisRateLimiter(redisClient, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter, log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.Use(middleware.Session(sessionCodec, cfg.Session.CookieName, loginService, log))

	// Register routes
	r := router.NewRouter(engine)
	r.Register(handler.NewAuthHandler(loginService, sessionCodec, destinationRepo, cfg.Session)).
		Register(handler.NewPricingHandler(pricingService)).
		Register(handler.NewContractHandler(contractService)).
		Register(handler.NewDirectorHandler(adminService))
	r.Setup()

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
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := tracerProvider.Shutdown(context.Background()); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
