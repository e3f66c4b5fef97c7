package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shotlist/analytics-backend/internal/api"
	"github.com/shotlist/analytics-backend/internal/config"
	"github.com/shotlist/analytics-backend/internal/database"
	"github.com/shotlist/analytics-backend/internal/jobs"
	"github.com/shotlist/analytics-backend/internal/logger"
	"github.com/shotlist/analytics-backend/internal/services"
	"github.com/shotlist/analytics-backend/internal/websocket"
)

func main() {
	// Missing .env is fine in production; env vars are used directly.
	_ = godotenv.Load()

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	log := logger.New(logger.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: env == "development",
	})
	log.Info().Str("env", env).Msg("Starting Shotlist Analytics Backend")

	cfg := config.Load()
	if env != "development" && cfg.StateSigningSecret == "change-me-in-production" {
		log.Fatal().Msg("STATE_SIGNING_SECRET must be set in production")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Str("url", cfg.DatabaseURL).Msg("Connected to database")

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	redisClient := database.ConnectRedis(cfg.RedisURL, log)
	if redisClient != nil {
		log.Info().Msg("Connected to Redis")
	}

	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	svc := services.NewContainer(cfg, db, redisClient, wsHub, log)

	var scheduler *jobs.Scheduler
	if cfg.JobsEnabled {
		scheduler = jobs.NewScheduler(svc)
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start job scheduler")
		}
	}

	server := api.NewServer(svc)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	server.SetReady(true)
	log.Info().Msg("Service is ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	server.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("Database close error")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("Redis close error")
		}
	}

	log.Info().Msg("Shutdown complete")
}
