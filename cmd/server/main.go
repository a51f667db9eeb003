package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/florexport/backend/internal/application/delivery"
	invoicingapp "github.com/florexport/backend/internal/application/invoicing"
	partnerapp "github.com/florexport/backend/internal/application/partner"
	"github.com/florexport/backend/internal/application/report"
	"github.com/florexport/backend/internal/infrastructure/auth"
	"github.com/florexport/backend/internal/infrastructure/cache"
	"github.com/florexport/backend/internal/infrastructure/config"
	"github.com/florexport/backend/internal/infrastructure/docstore"
	"github.com/florexport/backend/internal/infrastructure/export"
	"github.com/florexport/backend/internal/infrastructure/logger"
	"github.com/florexport/backend/internal/infrastructure/mail"
	"github.com/florexport/backend/internal/infrastructure/persistence"
	"github.com/florexport/backend/internal/infrastructure/telemetry"
	"github.com/florexport/backend/internal/interfaces/http/handler"
	"github.com/florexport/backend/internal/interfaces/http/middleware"
	"github.com/florexport/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	var tracerProvider *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		telemetryCfg := telemetry.Config{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}
		tracerProvider, err = telemetry.NewTracerProvider(ctx, telemetryCfg, log)
		if err != nil {
			log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				log.Warn("Failed to shut down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
		if err != nil {
			log.Fatal("Failed to initialize metrics", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Warn("Failed to shut down meter provider", zap.Error(err))
			}
		}()

		loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
		if err != nil {
			log.Fatal("Failed to initialize log export", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
				log.Warn("Failed to shut down logger provider", zap.Error(err))
			}
		}()
		log = loggerProvider.BridgeZap(log, cfg.Telemetry.ServiceName)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Telemetry.Enabled {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.DBName, log); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	farmRepo := persistence.NewGormFarmRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	debitNoteRepo := persistence.NewGormDebitNoteRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Bulk payment idempotency store. Redis when configured, otherwise a
	// process-local fallback.
	var idempotency invoicingapp.IdempotencyStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisStore.Close()
		idempotency = redisStore
		log.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idempotency = cache.NewInMemoryIdempotencyStore()
		log.Warn("Redis not configured, using in-memory idempotency store")
	}

	// Application services
	customerService := partnerapp.NewCustomerService(customerRepo)
	farmService := partnerapp.NewFarmService(farmRepo)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, paymentRepo, creditNoteRepo, debitNoteRepo, log)
	paymentService := invoicingapp.NewPaymentService(invoiceRepo, paymentRepo, creditNoteRepo, debitNoteRepo, idempotency, uow, log)
	noteService := invoicingapp.NewNoteService(invoiceRepo, paymentRepo, creditNoteRepo, debitNoteRepo, uow, log)
	statementService := report.NewStatementService(customerRepo, invoiceRepo, paymentRepo, creditNoteRepo, debitNoteRepo)

	// Document delivery. The archive store and mailer are optional.
	var documentStore delivery.DocumentStore
	switch cfg.DocStore.Driver {
	case "s3":
		s3Store, err := docstore.NewS3Store(ctx, &cfg.DocStore, docstore.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize S3 document store", zap.Error(err))
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to ensure document bucket", zap.Error(err))
		}
		documentStore = s3Store
	case "filesystem":
		fsStore, err := docstore.NewFilesystemStore(cfg.DocStore.BasePath)
		if err != nil {
			log.Fatal("Failed to initialize filesystem document store", zap.Error(err))
		}
		documentStore = fsStore
	default:
		log.Warn("No document store configured, PDF archiving disabled")
	}

	var mailer delivery.Mailer
	if cfg.SMTP.Host != "" {
		smtpMailer, err := mail.NewSMTPMailer(&cfg.SMTP, log)
		if err != nil {
			log.Fatal("Failed to initialize SMTP mailer", zap.Error(err))
		}
		mailer = smtpMailer
	} else {
		log.Warn("SMTP not configured, email delivery disabled")
	}

	deliveryService := delivery.NewDeliveryService(
		invoiceService,
		statementService,
		customerRepo,
		farmRepo,
		export.NewInvoicePDFRenderer(cfg.App.Name),
		export.NewStatementExcelRenderer(),
		documentStore,
		mailer,
		log,
	)

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.App.Name))
	}
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg)))

	authConfig := middleware.DefaultAuthConfig(jwtService)
	authConfig.Logger = log
	engine.Use(middleware.AuthWithConfig(authConfig))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(
		handler.NewHealthHandler(db),
		handler.NewCustomerHandler(customerService),
		handler.NewFarmHandler(farmService),
		handler.NewInvoiceHandler(invoiceService),
		handler.NewPaymentHandler(paymentService),
		handler.NewNoteHandler(noteService),
		handler.NewReportHandler(statementService, deliveryService),
		handler.NewDocumentHandler(deliveryService),
	)
	r.Setup()

	// Root liveness probe, independent of the versioned API.
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// corsConfig builds the CORS middleware configuration from the HTTP config,
// falling back to defaults for unset fields.
func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return cors
}
