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
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/semenggoh/parkguide-api/internal/config"
	"github.com/semenggoh/parkguide-api/internal/database"
	"github.com/semenggoh/parkguide-api/internal/handler"
	"github.com/semenggoh/parkguide-api/internal/middleware"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
	"github.com/semenggoh/parkguide-api/internal/router"
	"github.com/semenggoh/parkguide-api/internal/service"
	"github.com/semenggoh/parkguide-api/pkg/storage"
)

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
		&models.ParkGuide{},
		&models.TrainingModule{},
		&models.PaymentTransaction{},
		&models.ModulePurchase{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAnswerOption{},
		&models.QuizAttempt{},
		&models.QuizResponse{},
		&models.Certification{},
		&models.GuideTrainingProgress{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, dashboard caching disabled")
	}

	// Notifications degrade to log-only when NATS is unreachable.
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, notifications will be logged only")
		} else {
			defer natsConn.Drain()
		}
	}

	receipts, err := storage.New(storage.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create receipt storage client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	store := repository.NewStore(db)

	notifier := service.NewNotifier(natsConn, cfg.NotificationSubject, logger)
	accessResolver := service.NewAccessResolver(store, logger)
	enrollmentService := service.NewEnrollmentService(store, receipts, validate, cfg.ReceiptMaxBytes, logger)
	paymentService := service.NewPaymentService(store, notifier, validate, logger)
	certificationService := service.NewCertificationService(store, logger)
	progressService := service.NewProgressService(store, validate, logger)
	licenseService := service.NewLicenseService(store, validate, logger)
	quizService := service.NewQuizService(store, accessResolver, certificationService, progressService, validate, cfg.QuizPassPercentage, logger)
	dashboardService := service.NewDashboardService(store, redisClient, cfg.DashboardCacheTTL, logger)

	moduleHandler := handler.NewModuleHandler(accessResolver, enrollmentService, progressService, logger)
	quizHandler := handler.NewQuizHandler(quizService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)
	guideHandler := handler.NewGuideHandler(paymentService, licenseService, logger)
	certificationHandler := handler.NewCertificationHandler(certificationService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, logger)
	router.Register(app, cfg, router.Dependencies{
		ModuleHandler:        moduleHandler,
		QuizHandler:          quizHandler,
		PaymentHandler:       paymentHandler,
		GuideHandler:         guideHandler,
		CertificationHandler: certificationHandler,
		DashboardHandler:     dashboardHandler,
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
		AccountMiddleware:    middleware.RequireAccount(store),
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
