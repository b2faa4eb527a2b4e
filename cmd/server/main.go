package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lagoon-stays/service-reservation/internal/application"
	"github.com/lagoon-stays/service-reservation/internal/auth"
	"github.com/lagoon-stays/service-reservation/internal/config"
	"github.com/lagoon-stays/service-reservation/internal/database"
	"github.com/lagoon-stays/service-reservation/internal/domain"
	"github.com/lagoon-stays/service-reservation/internal/events"
	"github.com/lagoon-stays/service-reservation/internal/handler"
	"github.com/lagoon-stays/service-reservation/internal/health"
	"github.com/lagoon-stays/service-reservation/internal/logger"
	"github.com/lagoon-stays/service-reservation/internal/middleware"
	"github.com/lagoon-stays/service-reservation/internal/notifier"
	"github.com/lagoon-stays/service-reservation/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-reservation")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-reservation",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.RescheduleRequestModel{},
			&repository.FeedbackModel{},
			&repository.UnitModel{},
			&repository.NotificationModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := events.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	rescheduleRepo := repository.NewGormRescheduleRepository(db)
	feedbackRepo := repository.NewGormFeedbackRepository(db)
	unitRepo := repository.NewGormUnitRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)

	clock := domain.RealClock{}
	storeNotifier := notifier.NewStoreNotifier(notificationRepo, clock, log)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		unitRepo,
		storeNotifier,
		kafkaProducer,
		clock,
		log,
	)
	rescheduleService := application.NewRescheduleService(
		rescheduleRepo,
		bookingRepo,
		storeNotifier,
		kafkaProducer,
		clock,
		log,
	)
	feedbackService := application.NewFeedbackService(
		feedbackRepo,
		bookingRepo,
		bookingService,
		storeNotifier,
		kafkaProducer,
		clock,
		log,
	)
	unitService := application.NewUnitService(unitRepo, clock, log)
	notificationService := application.NewNotificationService(notificationRepo, clock, log)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	rescheduleHandler := handler.NewRescheduleHandler(rescheduleService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	unitHandler := handler.NewUnitHandler(unitService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	adminHandler := handler.NewAdminHandler(
		bookingService,
		rescheduleService,
		feedbackService,
		unitService,
		notificationService,
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-reservation")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	rescheduleHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	feedbackHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	unitHandler.RegisterRoutes(&router.RouterGroup)
	notificationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-reservation...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-reservation stopped")
}
