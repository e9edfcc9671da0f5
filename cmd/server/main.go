package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-authoring-service/internal/cache"
	"github.com/quizforge/quiz-authoring-service/internal/config"
	"github.com/quizforge/quiz-authoring-service/internal/events"
	"github.com/quizforge/quiz-authoring-service/internal/handlers"
	"github.com/quizforge/quiz-authoring-service/internal/middleware"
	"github.com/quizforge/quiz-authoring-service/internal/repositories/postgres"
	"github.com/quizforge/quiz-authoring-service/internal/services"
	"github.com/quizforge/quiz-authoring-service/internal/utils"
	"github.com/quizforge/quiz-authoring-service/internal/validator"
	"github.com/quizforge/quiz-authoring-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := utils.ForEnvironment(cfg.Environment)
	logger.Info("Starting quiz authoring service",
		"port", cfg.Port,
		"environment", cfg.Environment)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Events are optional; without brokers the service runs standalone.
	var publisher events.EventPublisher = events.NoopEventPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.KafkaTopic,
			Logger:       utils.ToSlog(logger),
		})
		if err != nil {
			logger.Error("Failed to create Kafka publisher", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Warn("No Kafka brokers configured, quiz events disabled")
	}

	v := validator.New()
	cacheService := cache.NewRedisCache(redisClient, logger)
	quizRepo := postgres.NewQuizPostgreSQL(db)

	quizService := services.NewQuizService(quizRepo, v, publisher, cacheService, logger)
	sessionService := services.NewDraftSessionService(cacheService, v, publisher, logger)
	importExportService := services.NewImportExportService(v, logger)

	auth := middleware.NewAuthenticator(cfg, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))

	handlerManager := handlers.NewHandlerManager(sessionService, quizService, importExportService, auth, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Shutdown complete")
}
