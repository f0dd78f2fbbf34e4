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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ecolearn/ecolearn-api/api/swagger"
	"github.com/ecolearn/ecolearn-api/internal/handler"
	"github.com/ecolearn/ecolearn-api/internal/middleware"
	"github.com/ecolearn/ecolearn-api/internal/realtime"
	"github.com/ecolearn/ecolearn-api/internal/repository"
	"github.com/ecolearn/ecolearn-api/internal/service"
	"github.com/ecolearn/ecolearn-api/pkg/cache"
	"github.com/ecolearn/ecolearn-api/pkg/config"
	"github.com/ecolearn/ecolearn-api/pkg/database"
	"github.com/ecolearn/ecolearn-api/pkg/jobs"
	"github.com/ecolearn/ecolearn-api/pkg/logger"
	corsmiddleware "github.com/ecolearn/ecolearn-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ecolearn/ecolearn-api/pkg/middleware/requestid"
	"github.com/ecolearn/ecolearn-api/pkg/storage"
)

// @title EcoLearn API
// @version 1.0.0
// @description Gamified sustainability education backend
// @BasePath /
// @schemes http

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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching and realtime fan-out degraded", zap.Error(err))
		redisClient = nil
	}

	localStorage, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewTeacherProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	winnerRepo := repository.NewWinnerRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	competitionRepo := repository.NewCompetitionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	// Realtime fan-out.
	hub := realtime.NewHub(logr)
	var bus realtime.Bus
	if redisClient != nil {
		bus = realtime.NewRedisBus(redisClient, cfg.Notifications.Channel, logr)
		if err := bus.StartForwarder(ctx, hub.Dispatch); err != nil {
			logr.Warn("failed to start notification forwarder", zap.Error(err))
		}
		defer bus.Close() //nolint:errcheck
	}

	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, bus, validate, logr)

	gamificationSvc := service.NewGamificationService(
		userRepo, badgeRepo, leaderboardRepo, winnerRepo, cacheRepo,
		notificationSvc, metricsSvc, validate, logr,
		service.GamificationConfig{
			LeaderboardMaxLimit: cfg.Leaderboard.MaxLimit,
			LeaderboardCacheTTL: cfg.Leaderboard.CacheTTL,
		},
	)

	awardQueue := jobs.NewQueue("awards", service.NewAwardHandler(gamificationSvc), jobs.QueueConfig{
		Workers:    cfg.Rewards.WorkerCount,
		MaxRetries: cfg.Rewards.WorkerRetries,
		Logger:     logr,
	})
	awardQueue.Start(ctx)
	defer awardQueue.Stop()
	awards := service.NewAwardEnqueuer(awardQueue, logr)

	progressSvc := service.NewProgressService(progressRepo, courseRepo, awards, validate, logr, service.RewardPolicy{
		Material:    cfg.Rewards.Material,
		Quiz:        cfg.Rewards.Quiz,
		Assignment:  cfg.Rewards.Assignment,
		GameDefault: cfg.Rewards.GameDefault,
		GameMax:     cfg.Rewards.GameMax,
	})
	quizSvc := service.NewQuizService(quizRepo, courseRepo, progressSvc, awards, validate, logr, cfg.Rewards.Quiz)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, courseRepo, progressSvc, awards, notificationSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, userRepo, progressRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, profileRepo, validate, logr)
	moderationSvc := service.NewModerationService(profileRepo, courseRepo, notificationSvc, logr)
	communitySvc := service.NewCommunityService(communityRepo, validate, logr)
	competitionSvc := service.NewCompetitionService(competitionRepo, validate, logr)
	reportSvc := service.NewReportService(gamificationSvc, progressSvc, logr)
	fileSvc := service.NewFileService(localStorage, signer, logr, service.FileConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
	})
	authSvc := service.NewAuthService(userRepo, profileRepo, validate, logr, service.AuthConfig{
		Secret:        cfg.JWT.Secret,
		Expiry:        cfg.JWT.Expiration,
		RefreshExpiry: cfg.JWT.RefreshExpiration,
		Issuer:        "ecolearn-api",
	})

	if err := communitySvc.Bootstrap(ctx, cfg.Community.Name, cfg.Community.Description); err != nil {
		logr.Warn("failed to bootstrap community", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		User:         handler.NewUserHandler(userSvc, fileSvc),
		Course:       handler.NewCourseHandler(courseSvc, fileSvc, userSvc),
		Quiz:         handler.NewQuizHandler(quizSvc, userSvc),
		Assignment:   handler.NewAssignmentHandler(assignmentSvc, userSvc),
		Progress:     handler.NewProgressHandler(progressSvc),
		Gamification: handler.NewGamificationHandler(gamificationSvc),
		Moderation:   handler.NewModerationHandler(moderationSvc, userSvc),
		Notification: handler.NewNotificationHandler(notificationSvc, userSvc),
		Community:    handler.NewCommunityHandler(communitySvc),
		Competition:  handler.NewCompetitionHandler(competitionSvc, userSvc),
		Report:       handler.NewReportHandler(reportSvc),
		File:         handler.NewFileHandler(fileSvc, logr),
		Realtime:     handler.NewRealtimeHandler(hub, metricsSvc),
	})

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
		logr.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}
