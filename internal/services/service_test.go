package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shotlist/analytics-backend/internal/config"
	"github.com/shotlist/analytics-backend/internal/models"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
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
	))

	cfg := config.Load()
	return NewContainer(cfg, db, nil, nil, zerolog.Nop())
}

func createUser(t *testing.T, c *Container, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, c.DB.Create(user).Error)
	return user
}

func createCampaign(t *testing.T, c *Container, owner *models.User, name string) *models.Campaign {
	t.Helper()
	campaign := &models.Campaign{
		UserID:       owner.ID,
		CampaignName: name,
		ClientName:   owner.Username,
		CampaignType: "digital",
		StartDate:    time.Now().AddDate(0, -3, 0),
		EndDate:      time.Now().AddDate(0, 3, 0),
		Budget:       10000,
		Status:       "active",
	}
	require.NoError(t, c.DB.Create(campaign).Error)
	return campaign
}

func timeNowDay() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func addROI(t *testing.T, c *Container, campaign *models.Campaign, daysAgo int, revenue, cost float64, conversions int) {
	t.Helper()
	roi := 0.0
	roas := 0.0
	if cost > 0 {
		roi = (revenue - cost) / cost * 100
		roas = revenue / cost
	}
	now := time.Now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -daysAgo)
	require.NoError(t, c.DB.Create(&models.ROIMetric{
		CampaignID:    campaign.ID,
		Date:          date,
		Revenue:       revenue,
		Cost:          cost,
		Conversions:   conversions,
		ROIPercentage: roi,
		ROAS:          roas,
	}).Error)
}
