package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/blood-donation-api/api/swagger"
	"github.com/noah-isme/blood-donation-api/internal/handler"
	"github.com/noah-isme/blood-donation-api/internal/inventory"
	internalmiddleware "github.com/noah-isme/blood-donation-api/internal/middleware"
	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/repository"
	"github.com/noah-isme/blood-donation-api/internal/service"
	"github.com/noah-isme/blood-donation-api/pkg/cache"
	"github.com/noah-isme/blood-donation-api/pkg/config"
	"github.com/noah-isme/blood-donation-api/pkg/database"
	"github.com/noah-isme/blood-donation-api/pkg/jobs"
	"github.com/noah-isme/blood-donation-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/blood-donation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/blood-donation-api/pkg/middleware/requestid"
	"github.com/noah-isme/blood-donation-api/pkg/storage"
)

// @title Blood Donation API
// @version 1.0.0
// @description Donors, hospitals and managers coordinating appointments, health evaluations, blood stock and emergency requests.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		applied, err := database.ApplyMigrations(ctx, db, cfg.Database.MigrationsDir)
		if err != nil {
			logr.Sugar().Fatalw("migrations failed", "error", err)
		}
		logr.Sugar().Infow("migrations applied", "files", applied)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	classifier := inventory.NewClassifier(cfg.Inventory.SoonWindow, nil)

	accounts := repository.NewAccountRepository(db)
	donorRepo := repository.NewDonorRepository(db)
	hospitalRepo := repository.NewHospitalRepository(db)
	hospitalAdminRepo := repository.NewHospitalAdminRepository(db)
	managerRepo := repository.NewManagerRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	emergencyRepo := repository.NewEmergencyRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	reportRepo := repository.NewReportRepository(db)

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Inventory.CacheTTL, logr, redisClient != nil)

	documents, localDocuments, err := buildDocumentStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("document storage init failed", "error", err)
	}
	docPolicy := service.DocumentPolicy{MaxSizeBytes: cfg.Documents.MaxFileSizeBytes, AllowedMIMEs: cfg.Documents.AllowedMIMEs}
	sessionDeps := func(repo *repository.SessionRepository) service.SessionServiceDeps {
		return service.SessionServiceDeps{
			Repo:           repo,
			Hospitals:      hospitalRepo,
			Documents:      documents,
			DocumentPolicy: docPolicy,
			Audit:          accounts,
			Metrics:        metrics,
			Validator:      validate,
			Logger:         logr,
		}
	}
	sessions := service.SessionDirectory{
		models.SessionAppointment: appointmentRepo,
		models.SessionEvaluation:  evaluationRepo,
	}

	exportFiles, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("report storage init failed", "error", err)
	}
	exporter := service.NewExportService(service.ExportSources{
		Inventory:    inventoryRepo,
		Appointments: appointmentRepo,
		Evaluations:  evaluationRepo,
		Emergencies:  emergencyRepo,
	}, classifier, exportFiles, storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL), service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr)
	worker := service.NewReportWorker(reportRepo, exporter, metrics, cfg.Reports.WorkerRetries, logr)
	reportQueue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		OnGiveUp:   worker.GiveUp,
		Logger:     logr,
	})
	metrics.TrackQueueDepth("reports", reportQueue.Len)
	reportSvc := service.NewReportService(reportRepo, reportQueue, exporter, accounts, metrics, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	if cfg.Reports.Enabled {
		reportQueue.Start(ctx)
		defer reportQueue.Stop()
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	authSvc := service.NewAuthService(accounts, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})

	handlers := handler.Handlers{
		Auth:           handler.NewAuthHandler(authSvc),
		Donors:         handler.NewDonorHandler(service.NewDonorService(donorRepo, accounts, validate, logr)),
		Hospitals:      handler.NewHospitalHandler(service.NewHospitalService(hospitalRepo, accounts, validate, logr)),
		HospitalAdmins: handler.NewHospitalAdminHandler(service.NewHospitalAdminService(hospitalAdminRepo, accounts, validate, logr)),
		Managers:       handler.NewManagerHandler(service.NewManagerService(managerRepo, accounts, validate, logr)),
		Appointments:   handler.NewSessionHandler(service.NewSessionService(sessionDeps(appointmentRepo))),
		Evaluations:    handler.NewSessionHandler(service.NewSessionService(sessionDeps(evaluationRepo))),
		Inventory:      handler.NewInventoryHandler(service.NewInventoryService(inventoryRepo, classifier, cacheSvc, cfg.Inventory.CacheTTL, accounts, validate, logr)),
		Emergencies:    handler.NewEmergencyHandler(service.NewEmergencyService(emergencyRepo, accounts, metrics, validate, logr)),
		Feedback:       handler.NewFeedbackHandler(service.NewFeedbackService(feedbackRepo, sessions, accounts, validate, logr)),
		Inquiries:      handler.NewInquiryHandler(service.NewInquiryService(inquiryRepo, sessions, accounts, metrics, validate, logr)),
		Reports:        handler.NewReportHandler(reportSvc),
	}
	if localDocuments != nil {
		handlers.Documents = handler.NewDocumentHandler(localDocuments)
	}

	metricsHandler := handler.NewMetricsHandler(metrics, readinessChecks(db.PingContext, redisClient, metrics))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handlers, internalmiddleware.JWT(authSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildDocumentStore returns the configured store. The local variant is also returned
// separately because it needs an HTTP route to stream files back.
func buildDocumentStore(cfg *config.Config) (service.DocumentStore, *storage.LocalDocumentStore, error) {
	if cfg.Documents.Driver == config.StorageDriverS3 {
		store, err := storage.NewS3DocumentStore(cfg.S3, cfg.Documents.SignedURLTTL)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
	files, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)
	local := storage.NewLocalDocumentStore(files, signer, cfg.APIPrefix+"/documents")
	return local, local, nil
}

func readinessChecks(pingDB func(context.Context) error, redisClient *redis.Client, metrics *service.MetricsService) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": func(ctx context.Context) error {
			start := time.Now()
			err := pingDB(ctx)
			metrics.ObserveDBQuery("ping", time.Since(start))
			return err
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}
