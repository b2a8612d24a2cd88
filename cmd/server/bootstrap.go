package main

import (
	"context"

	"github.com/matchwise/backend/internal/config"
	"github.com/matchwise/backend/internal/handlers"
	"github.com/matchwise/backend/internal/middleware"
	"github.com/matchwise/backend/internal/models"
	"github.com/matchwise/backend/internal/services"
	"github.com/matchwise/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	taskQueue services.TaskQueue
	worker    *services.Worker
	scheduler *services.Scheduler

	rebuildLimiter *middleware.RateLimiter
	jobLimiter     *middleware.RateLimiter

	healthHandler       *handlers.HealthHandler
	metricsHandler      *handlers.MetricsHandler
	matchHandler        *handlers.MatchHandler
	systemConfigHandler *handlers.SystemConfigHandler
	schedulerHandler    *handlers.SchedulerHandler
	systemLogHandler    *handlers.SystemLogHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()
	services.InitSystemLogger(db)

	projectService := services.NewProjectService(db)
	vendorService := services.NewVendorService(db)
	configService := services.NewSystemConfigService(db)
	matchStore := services.NewGormMatchStore(db)
	emailService := services.NewEmailService(cfg.Mail)

	// Uses Redis if enabled, otherwise notifications are delivered inline
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(services.EmailProcessor(emailService))
	}

	var worker *services.Worker
	if taskQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(services.EmailProcessor(emailService))
			if err := worker.Start(); err != nil {
				logger.Error().Err(err).Msg("Failed to start notification worker")
			}
		}
	}

	notificationService := services.NewNotificationService(taskQueue)
	matchService := services.NewMatchService(projectService, vendorService, configService, matchStore, notificationService)

	scheduler := services.NewScheduler(cfg.Scheduler, services.SchedulerDeps{
		Projects:  projectService,
		Rebuilder: matchService,
		Sweeper:   services.NewSLASweeper(matchStore),
		Reaper:    services.NewSessionReaper(services.NewGormSessionStore(db)),
		Locker:    services.NewDBJobLocker(db),
	})
	if cfg.Scheduler.Enabled {
		if err := scheduler.Start(); err != nil {
			logger.Fatalf("Failed to start scheduler: %v", err)
		}
	} else {
		logger.Info().Msg("Scheduler disabled, jobs run only on demand")
	}

	return &appServices{
		taskQueue:           taskQueue,
		worker:              worker,
		scheduler:           scheduler,
		rebuildLimiter:      middleware.NewRateLimiter(2, 5),
		jobLimiter:          middleware.NewRateLimiter(0.2, 2),
		healthHandler:       handlers.NewHealthHandler(db, taskQueue),
		metricsHandler:      handlers.NewMetricsHandler(db, taskQueue),
		matchHandler:        handlers.NewMatchHandler(matchService, matchStore),
		systemConfigHandler: handlers.NewSystemConfigHandler(configService),
		schedulerHandler:    handlers.NewSchedulerHandler(scheduler),
		systemLogHandler:    handlers.NewSystemLogHandler(db),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown(ctx context.Context) {
	s.scheduler.Stop(ctx)

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close task queue")
		}
	}

	s.rebuildLimiter.Close()
	s.jobLimiter.Close()
}
