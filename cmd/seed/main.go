// Command seed creates the demo users, campaigns and metric history in
// an empty database.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/shotlist/analytics-backend/internal/config"
	"github.com/shotlist/analytics-backend/internal/database"
	"github.com/shotlist/analytics-backend/internal/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: true,
	})

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	if err := database.Seed(db, log); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}
}
