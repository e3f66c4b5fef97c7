package database

import (
	"context"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shotlist/analytics-backend/internal/models"
)

// Connect opens the datastore. A postgres:// URL goes through the
// postgres driver; anything else is treated as a SQLite file path,
// matching the single-file deployment the dashboard ships with.
func Connect(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}

// Migrate creates the schema idempotently. There is no versioned
// migrations system; AutoMigrate is run on every startup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.OAuthState{},
		&models.LoginAttempt{},

		&models.Campaign{},
		&models.ROIMetric{},
		&models.SEOMetric{},
		&models.SocialMetric{},
		&models.TrackingConfig{},

		&models.SocialAccount{},
		&models.SocialSettings{},
		&models.DailyMetric{},
		&models.ContentPerformance{},
		&models.AudienceDemographic{},
		&models.AuditEntry{},

		&models.AdPlatformConfig{},
		&models.NotionConfig{},
		&models.FigmaSyncConfig{},
	)
}

// ConnectRedis returns nil when no URL is configured; the login rate
// limiter degrades to a no-op in that case.
func ConnectRedis(redisURL string, log zerolog.Logger) *redis.Client {
	if redisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid Redis URL, rate limiting disabled")
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis connection failed, rate limiting disabled")
		return nil
	}

	return client
}
