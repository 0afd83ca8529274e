package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/handler"
	"github.com/noah-isme/hostel-api/internal/repository"
	"github.com/noah-isme/hostel-api/internal/service"
	"github.com/noah-isme/hostel-api/migrations"
	"github.com/noah-isme/hostel-api/pkg/cache"
	"github.com/noah-isme/hostel-api/pkg/config"
	"github.com/noah-isme/hostel-api/pkg/database"
	"github.com/noah-isme/hostel-api/pkg/jobs"
	"github.com/noah-isme/hostel-api/pkg/logger"
	"github.com/noah-isme/hostel-api/pkg/storage"
)

// @title Hostel Management API
// @version 1.0.0
// @description Rooms, assignments, registrations, requests and reports for hostel staff and students.
// @BasePath /api/v1
// @schemes http
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if _, err := database.NewMigrator(db, migrations.Files, logr).Up(ctx); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	photoStore, err := storage.NewLocalStorage(cfg.Photos.StorageDir)
	if err != nil {
		return fmt.Errorf("photo storage: %w", err)
	}
	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return fmt.Errorf("report storage: %w", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	furnitureRepo := repository.NewFurnitureRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.RoomsTTL, logr, cfg.Cache.Enabled)

	authSvc := service.NewAuthService(userRepo, registrationRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "hostel-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, furnitureRepo, cacheSvc, validate, logr, service.RoomServiceConfig{ListTTL: cfg.Cache.RoomsTTL})
	furnitureSvc := service.NewFurnitureService(furnitureRepo, roomRepo, cacheSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, roomRepo, userRepo, cacheSvc, metricsSvc, validate, logr)
	registrationSvc := service.NewRegistrationService(
		registrationRepo,
		photoStore,
		storage.NewSignedURLSigner(cfg.Photos.SignedURLSecret, cfg.Photos.SignedURLTTL),
		userRepo,
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		service.RegistrationServiceConfig{
			MaxPhotoSize: cfg.Photos.MaxFileSizeBytes,
			AllowedMIMEs: cfg.Photos.AllowedMIMEs,
			APIPrefix:    cfg.APIPrefix,
		},
	)
	requestSvc := service.NewRequestService(requestRepo, assignmentRepo, cacheSvc, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, cacheSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Rooms:         roomRepo,
		Registrations: registrationRepo,
		Requests:      requestRepo,
		Announcements: announcementRepo,
		Cache:         cacheSvc,
		Logger:        logr,
		Config:        service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	handlers := routeHandlers{
		auth:         handler.NewAuthHandler(authSvc),
		users:        handler.NewUserHandler(userSvc),
		rooms:        handler.NewRoomHandler(roomSvc, furnitureSvc),
		assignments:  handler.NewAssignmentHandler(assignmentSvc),
		registration: handler.NewRegistrationHandler(registrationSvc),
		requests:     handler.NewRequestHandler(requestSvc),
		announcement: handler.NewAnnouncementHandler(announcementSvc),
		dashboard:    handler.NewDashboardHandler(dashboardSvc),
		metrics: handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
			"database": db.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		}),
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	if cfg.Reports.Enabled {
		exportSvc := service.NewExportService(
			service.ExportSources{Rooms: roomRepo, Requests: requestRepo, Registrations: registrationRepo},
			reportStore,
			storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL),
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
			logr,
		)
		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:     cfg.Reports.WorkerConcurrency,
			MaxAttempts: cfg.Reports.WorkerRetries,
			RetryDelay:  2 * time.Second,
			Observer: func(job jobs.Job, err error, elapsed time.Duration) {
				metricsSvc.ObserveReportJob(job.Type, err, elapsed)
			},
			Logger: logr,
		})
		queue.Start(workerCtx)
		defer queue.Stop()

		reportSvc := service.NewReportService(reportRepo, queue, exportSvc, validate, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
		})
		reportSvc.RecoverPendingJobs(workerCtx)
		reportSvc.StartCleanup(workerCtx)
		handlers.reports = handler.NewReportHandler(reportSvc)
	}

	router := newRouter(cfg, logr, metricsSvc, authSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
