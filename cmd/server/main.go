package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apinvoiceapp "github.com/freightdesk/backend/internal/application/apinvoice"
	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/infrastructure/auth"
	"github.com/freightdesk/backend/internal/infrastructure/config"
	"github.com/freightdesk/backend/internal/infrastructure/event"
	"github.com/freightdesk/backend/internal/infrastructure/extraction"
	"github.com/freightdesk/backend/internal/infrastructure/lock"
	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/infrastructure/persistence"
	"github.com/freightdesk/backend/internal/infrastructure/storage"
	"github.com/freightdesk/backend/internal/interfaces/http/handler"
	"github.com/freightdesk/backend/internal/interfaces/http/middleware"
	"github.com/freightdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//	@title			FreightDesk AP API
//	@version		1.0
//	@description	Accounts-payable invoice reconciliation API for the shipping backend

//	@contact.name	API Support
//	@contact.email	support@freightdesk.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
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
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting FreightDesk AP Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
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

	// Shared Redis client for the mutation locker and the token blacklist
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cancelPing()
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))

	tokenBlacklist := auth.NewRedisTokenBlacklistWithClient(redisClient)
	shipmentLocker := lock.NewRedisShipmentLocker(redisClient, &cfg.Lock)

	// JWT service for actor extraction on mutating requests
	jwtService := auth.NewJWTService(cfg.JWT)

	// Document store for uploaded carrier invoices
	documentStore, err := storage.NewS3DocumentStore(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize document store", zap.Error(err))
	}
	bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 15*time.Second)
	if err := documentStore.EnsureBucket(bucketCtx); err != nil {
		cancelBucket()
		log.Fatal("Failed to ensure document bucket", zap.Error(err))
	}
	cancelBucket()
	log.Info("Document store ready", zap.String("bucket", cfg.Storage.Bucket))

	// AI extraction client for page classification and invoice extraction
	extractionClient := extraction.NewClient(extraction.Config{
		APIKey:  cfg.Extraction.APIKey,
		Model:   cfg.Extraction.Model,
		Timeout: cfg.Extraction.Timeout,
	}, log)

	// Initialize repositories
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	uploadRepo := persistence.NewGormUploadRepository(db.DB)
	extractionResultRepo := persistence.NewGormExtractionResultRepository(db.DB)

	// Domain services
	locator := apinvoice.NewLocator(shipmentRepo)
	matcher := apinvoice.NewMatcher(locator)
	reconciler := apinvoice.NewReconciler()

	// Initialize event bus and the invoicing audit trail
	eventBus := event.NewInMemoryEventBus(log)
	auditHandler := apinvoiceapp.NewStatusAuditHandler(log)
	eventBus.Subscribe(auditHandler)
	log.Info("Event handlers registered",
		zap.Strings("audit_events", auditHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	anomalyDetector := apinvoiceapp.NewChargeAnomalyDetector()
	costService := apinvoiceapp.NewCostService(locator, shipmentRepo, shipmentLocker, anomalyDetector, eventBus, log)
	processingService := apinvoiceapp.NewProcessingService(uploadRepo, extractionResultRepo, extractionClient, documentStore, matcher, log)
	reconcileService := apinvoiceapp.NewReconcileService(uploadRepo, extractionResultRepo, matcher, reconciler, costService, log)
	overrideService := apinvoiceapp.NewOverrideService(locator, shipmentRepo, shipmentLocker, eventBus, log)

	// HTTP handlers
	handlers := router.Handlers{
		System:    handler.NewSystemHandler(),
		Shipments: handler.NewShipmentHandler(locator, costService),
		Uploads:   handler.NewUploadHandler(uploadRepo, documentStore, processingService),
		Reconcile: handler.NewReconcileHandler(reconcileService),
		Overrides: handler.NewOverrideHandler(overrideService),
	}

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
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.RequestLogger(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT authentication on API routes; system endpoints stay public
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	for _, registrar := range router.BuildRoutes(handlers) {
		r.Register(registrar)
	}
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
		reqLog := logger.FromGin(c)
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
