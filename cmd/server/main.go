package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maker-atelier/service-booking/internal/adapter"
	"github.com/maker-atelier/service-booking/internal/application"
	"github.com/maker-atelier/service-booking/internal/config"
	eventsConsumer "github.com/maker-atelier/service-booking/internal/events/consumer"
	"github.com/maker-atelier/service-booking/internal/handler"
	"github.com/maker-atelier/service-booking/internal/repository"
	"github.com/maker-atelier/service-booking/internal/saga"
	"github.com/maker-atelier/service-booking/pkg/auth"
	"github.com/maker-atelier/service-booking/pkg/database"
	"github.com/maker-atelier/service-booking/pkg/health"
	"github.com/maker-atelier/service-booking/pkg/kafka"
	"github.com/maker-atelier/service-booking/pkg/logger"
	"github.com/maker-atelier/service-booking/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}

	db, err := database.Connect(dbConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.WorkshopModel{}, &repository.CouponModel{}, &repository.CouponUsageModel{}, &repository.BookingModel{}); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer kafkaProducer.Close()

	// Initialize checkout adapter; without a Stripe key the mock keeps the
	// full flow working locally.
	var checkoutAdapter adapter.CheckoutAdapter
	if cfg.StripeConfig.SecretKey != "" {
		checkoutAdapter = adapter.NewStripeCheckoutAdapter(cfg.StripeConfig.SecretKey, zapLogger)
		zapLogger.Info("using Stripe checkout adapter")
	} else {
		checkoutAdapter = adapter.NewMockCheckoutAdapter(zapLogger)
		zapLogger.Warn("STRIPE_SECRET_KEY not set, using mock checkout adapter")
	}

	// Initialize repositories
	workshopRepo := repository.NewGormWorkshopRepository(db)
	couponRepo := repository.NewGormCouponRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)

	// Initialize saga service
	sagaService := saga.NewBookingSagaService(
		bookingRepo,
		couponRepo,
		workshopRepo,
		checkoutAdapter,
		kafkaProducer,
		saga.CheckoutURLs{
			SuccessURL: cfg.CheckoutConfig.SuccessURL,
			CancelURL:  cfg.CheckoutConfig.CancelURL,
		},
		zapLogger,
	)

	// Initialize application services
	couponService := application.NewCouponService(couponRepo, zapLogger)
	workshopService := application.NewWorkshopService(workshopRepo, zapLogger)
	bookingService := application.NewBookingService(
		bookingRepo,
		couponRepo,
		workshopRepo,
		checkoutAdapter,
		sagaService,
		kafkaProducer,
		cfg.Currency,
		zapLogger,
	)

	// Initialize Kafka consumer for payment provider events
	consumerGroupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	providerConsumer := eventsConsumer.NewProviderEventConsumer(
		cfg.KafkaConfig.Brokers,
		consumerGroupID,
		bookingService,
		zapLogger,
	)
	defer providerConsumer.Close()

	// Start Kafka consumer in a goroutine
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		zapLogger.Info("starting provider event consumer")
		if err := providerConsumer.Start(consumerCtx); err != nil {
			if consumerCtx.Err() == nil {
				zapLogger.Error("provider event consumer failed", zap.Error(err))
			}
		}
	}()

	// Initialize HTTP handlers
	couponHandler := handler.NewCouponHandler(couponService)
	workshopHandler := handler.NewWorkshopHandler(workshopService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	adminHandler := handler.NewAdminHandler(couponService, workshopService, bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	apiV1 := router.Group("/api/v1")
	couponHandler.RegisterRoutes(apiV1)
	workshopHandler.RegisterRoutes(apiV1)
	bookingHandler.RegisterRoutes(apiV1)
	adminHandler.RegisterRoutes(apiV1, jwtManager)

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
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-booking...")

	// Cancel Kafka consumer
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-booking stopped")
}
