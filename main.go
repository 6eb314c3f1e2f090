package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"livsoul/internal/auth"
	"livsoul/internal/config"
	"livsoul/internal/database"
	logger "livsoul/internal/logging"
	"livsoul/internal/metrics"
	"livsoul/internal/models"
	"livsoul/internal/repository"
	"livsoul/internal/router"
	"livsoul/internal/services"

	"go.uber.org/zap"
)

func main() {
	// Bootstrap logger; the config is not readable yet.
	boot, err := logger.Init(".", logger.DefaultRotation)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	conf, err := config.Load(".", boot)
	if err != nil {
		boot.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Rebuild the logger with the configured rotation settings.
	log, err := logger.Init(".", conf.Logging.Rotation())
	if err != nil {
		boot.Fatal("Failed to initialize logger", zap.Error(err))
	}
	boot.Sync()
	defer log.Sync()

	db, err := database.Connect(conf.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Load the clinical vocabulary at startup
	vocabulary, err := models.LoadVocabulary("config/vocabulary.yaml")
	if err != nil {
		log.Fatal("Failed to load clinical vocabulary", zap.Error(err))
	}

	users := repository.NewUsers(db)
	predictions := repository.NewPredictions(db)
	records := repository.NewMedicalRecords(db)

	tokens := auth.NewManager(conf.JWT)
	collector := metrics.NewCollector()

	authService := services.NewAuthService(users, tokens, log)
	predictionService := services.NewPredictionService(
		predictions, records, vocabulary, collector, log)
	emailService := services.NewEmailService(log)
	scheduler := services.NewScheduler(log, emailService, predictions, users)

	engine := router.Setup(router.Deps{
		Config:      conf,
		Log:         log,
		DB:          db,
		Tokens:      tokens,
		Users:       users,
		Auth:        authService,
		Predictions: predictionService,
		Metrics:     collector,
	})

	server := &http.Server{
		Addr:    ":" + conf.Server.Port,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)

	go func() {
		log.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
