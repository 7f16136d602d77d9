package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-candidate-tracker/config"
	v1 "go-candidate-tracker/internal/delivery/http/v1"
	"go-candidate-tracker/internal/notify"
	"go-candidate-tracker/internal/repository/postgres"
	s3store "go-candidate-tracker/internal/storage/s3"
	"go-candidate-tracker/internal/usecase"
	"go-candidate-tracker/pkg/database"
	"go-candidate-tracker/pkg/logger"
	"go-candidate-tracker/pkg/redis"
	"go-candidate-tracker/pkg/validation"

	"github.com/go-playground/validator/v10"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting candidate tracker backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(dbPool); err != nil {
		logger.Log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional, rate limiting falls back to in-memory)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
	}
	defer redis.Close()

	// 5. Setup Blob Storage
	s3Client, err := s3store.NewClient(context.Background(), cfg)
	if err != nil {
		logger.Log.Error("Failed to create S3 client", "error", err)
		os.Exit(1)
	}
	resumeStore := s3store.NewResumeStore(s3Client, cfg.ResumeBucket, cfg.PublicStorageURL)

	// 6. Setup Repositories and UseCases
	candidateRepo := postgres.NewCandidateRepository(dbPool)

	validate := validator.New()
	validation.RegisterValidators(validate)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, resumeStore, validate)

	// 7. Setup Change Notifier
	notifier := notify.New(dbPool)
	notifier.Start(context.Background())
	defer notifier.Close()

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		CandidateUC: candidateUC,
		Notifier:    notifier,
		Config:      cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
