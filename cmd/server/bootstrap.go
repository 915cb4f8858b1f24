package main

import (
	"github.com/redis/go-redis/v9"
	"github.com/travelit/backend/internal/config"
	"github.com/travelit/backend/internal/handlers"
	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/internal/services"
	"github.com/travelit/backend/internal/utils"
	"github.com/travelit/backend/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg        *config.Config
	db         *gorm.DB
	systemLogs *services.SystemLogService
	cleanup    *services.CleanupService
	taskQueue  services.TaskQueue
	worker     *services.Worker
	redis      *redis.Client

	authHandler   *handlers.AuthHandler
	userHandler   *handlers.UserHandler
	friendHandler *handlers.FriendHandler
	mapHandler    *handlers.MapHandler
	markerHandler *handlers.MarkerHandler
	healthHandler *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	db, err := models.Open(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.Migrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	systemLogs := services.NewSystemLogService(db)
	gate := services.NewAccessGate(db, systemLogs)

	// Uses Redis if enabled and reachable, otherwise sends inline
	mailer := services.NewMailer(&cfg.Mail)
	taskQueue := services.NewTaskQueue(cfg, mailer)

	var worker *services.Worker
	var rdb *redis.Client
	if taskQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(services.MailProcessor(mailer))
			if err := worker.Start(); err != nil {
				logger.Error().Err(err).Msg("Failed to start mail worker")
			}
		}
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	images, err := services.NewLocalImageStore(cfg.Storage.UploadDir, cfg.App.PublicURL+cfg.Storage.PublicPath)
	if err != nil {
		logger.Fatalf("Failed to prepare upload directory: %v", err)
	}

	cleanup := services.NewCleanupService(db, systemLogs, cfg.Cleanup)
	if err := cleanup.StartScheduler(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start cleanup scheduler")
	}

	healthHandler := handlers.NewHealthHandler(db, taskQueue, nil)
	if rdb != nil {
		healthHandler = handlers.NewHealthHandler(db, taskQueue, rdb)
	}

	return &appServices{
		cfg:        cfg,
		db:         db,
		systemLogs: systemLogs,
		cleanup:    cleanup,
		taskQueue:  taskQueue,
		worker:     worker,
		redis:      rdb,

		authHandler:   handlers.NewAuthHandler(services.NewAuthService(db, cfg, taskQueue), cfg),
		userHandler:   handlers.NewUserHandler(services.NewUserService(db, images, cfg.Storage.MaxAvatarBytes)),
		friendHandler: handlers.NewFriendHandler(services.NewFriendService(db, gate)),
		mapHandler:    handlers.NewMapHandler(services.NewMapService(db, gate)),
		markerHandler: handlers.NewMarkerHandler(services.NewMarkerService(db, gate)),
		healthHandler: healthHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.cleanup.StopScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close task queue")
		}
	}
	if s.redis != nil {
		s.redis.Close()
	}
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}
