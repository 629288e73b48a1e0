package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bloodlagbe/bloodlagbe-api/internal/config"
	"github.com/bloodlagbe/bloodlagbe-api/internal/database"
	"github.com/bloodlagbe/bloodlagbe-api/internal/handler"
	"github.com/bloodlagbe/bloodlagbe-api/internal/middleware"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/observability"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
	"github.com/bloodlagbe/bloodlagbe-api/internal/router"
	"github.com/bloodlagbe/bloodlagbe-api/internal/service"
)

const uploadMaxSizeMB = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Campus{},
		&models.Group{},
		&models.Donor{},
		&models.DonorListSubmission{},
		&models.PlatformFeedback{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	observability.RegisterMetrics()

	validate := validator.New(validator.WithRequiredStructEnabled())

	donorRepo := repository.NewDonorRepository(db)
	campusRepo := repository.NewCampusRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	donorService := service.NewDonorService(donorRepo, campusRepo, groupRepo, redisClient, cfg.FilterCacheTTL, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, validate, logger)
	reviewService := service.NewReviewService(reviewRepo, submissionRepo, activityService, validate, logger)
	uploadService := service.NewUploadService(donorRepo, campusRepo, groupRepo, activityService, uploadMaxSizeMB, logger)
	campusService := service.NewReferenceService("campus", campusRepo, activityService, donorService, validate, logger)
	groupService := service.NewReferenceService("group", groupRepo, activityService, donorService, validate, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DonorHandler:           handler.NewDonorHandler(donorService, logger),
		SubmissionHandler:      handler.NewSubmissionHandler(submissionService, logger),
		AdminSubmissionHandler: handler.NewAdminSubmissionHandler(submissionService, reviewService, logger),
		UploadHandler:          handler.NewUploadHandler(uploadService, logger),
		CampusHandler:          handler.NewReferenceHandler("campus", campusService, logger),
		GroupHandler:           handler.NewReferenceHandler("group", groupService, logger),
		FeedbackHandler:        handler.NewFeedbackHandler(feedbackService, logger),
		AdminActivityHandler:   handler.NewAdminActivityHandler(activityService, logger),
		JWTMiddleware:          middleware.JWTProtected(cfg.JWTSecret),
		JWTOptionalMiddleware:  middleware.JWTOptional(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
