package database

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shotlist/analytics-backend/internal/models"
)

const seedHistoryDays = 90

type seedClient struct {
	Username string
	Email    string
	FullName string
	Type     string
	Budget   float64
}

var seedClients = []seedClient{
	{"techstartup", "contact@techstartup.io", "Tech Startup Inc", "digital", 25000},
	{"ecommerce", "hello@shopmore.com", "ShopMore Ecommerce", "social", 40000},
	{"fashionbrand", "brand@fashionista.com", "Fashionista Brand", "influencer", 30000},
	{"restaurant", "info@labuenamesa.com", "La Buena Mesa", "local", 12000},
	{"saascompany", "growth@cloudtools.io", "CloudTools SaaS", "content", 50000},
}

// Seed populates a fresh database with the demo accounts and 90 days
// of metric history. Running it twice is a no-op.
func Seed(db *gorm.DB, log zerolog.Logger) error {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Info().Msg("Database already seeded, skipping")
		return nil
	}

	rng := rand.New(rand.NewSource(42))

	admin, err := seedUser(db, "admin", "admin@shotlist.com", "Shotlist Admin", "admin123", models.RoleAdmin)
	if err != nil {
		return err
	}
	log.Info().Str("email", admin.Email).Msg("Admin user created")

	for _, sc := range seedClients {
		user, err := seedUser(db, sc.Username, sc.Email, sc.FullName, "demo123", models.RoleClient)
		if err != nil {
			return err
		}
		if err := seedCampaigns(db, rng, user, sc); err != nil {
			return err
		}
		log.Info().Str("username", user.Username).Msg("Demo client created")
	}

	if err := seedSEO(db, rng); err != nil {
		return err
	}
	if err := seedTrackingConfig(db); err != nil {
		return err
	}

	log.Info().Msg("Seed complete")
	return nil
}

func seedUser(db *gorm.DB, username, email, fullName, password string, role models.Role) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashed),
		Role:         role,
		Provider:     "email",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func seedCampaigns(db *gorm.DB, rng *rand.Rand, user *models.User, sc seedClient) error {
	now := time.Now()
	names := []string{
		fmt.Sprintf("%s Awareness Q3", sc.FullName),
		fmt.Sprintf("%s Conversion Push", sc.FullName),
	}
	statuses := []string{"active", "completed"}

	for i, name := range names {
		campaign := &models.Campaign{
			UserID:       user.ID,
			CampaignName: name,
			ClientName:   sc.FullName,
			CampaignType: sc.Type,
			StartDate:    now.AddDate(0, 0, -seedHistoryDays),
			EndDate:      now.AddDate(0, 1, 0),
			Budget:       sc.Budget / float64(i+1),
			Status:       statuses[i%len(statuses)],
		}
		if err := db.Create(campaign).Error; err != nil {
			return err
		}

		if err := seedROI(db, rng, campaign); err != nil {
			return err
		}
		if err := seedSocialMetrics(db, rng, campaign); err != nil {
			return err
		}
	}
	return nil
}

func seedROI(db *gorm.DB, rng *rand.Rand, campaign *models.Campaign) error {
	now := time.Now()
	dailyBudget := campaign.Budget / seedHistoryDays

	for day := seedHistoryDays; day > 0; day-- {
		date := truncateDay(now.AddDate(0, 0, -day))
		cost := dailyBudget * (0.7 + rng.Float64()*0.6)
		revenue := cost * (0.8 + rng.Float64()*2.2)

		roi := 0.0
		roas := 0.0
		if cost > 0 {
			roi = (revenue - cost) / cost * 100
			roas = revenue / cost
		}

		metric := &models.ROIMetric{
			CampaignID:    campaign.ID,
			Date:          date,
			Revenue:       round2(revenue),
			Cost:          round2(cost),
			Conversions:   5 + rng.Intn(45),
			ROIPercentage: round2(roi),
			ROAS:          round2(roas),
		}
		if err := db.Create(metric).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedSocialMetrics(db *gorm.DB, rng *rand.Rand, campaign *models.Campaign) error {
	now := time.Now()
	platforms := []string{"instagram", "facebook", "twitter"}

	for day := seedHistoryDays; day > 0; day -= 3 {
		date := truncateDay(now.AddDate(0, 0, -day))
		for _, platform := range platforms {
			metric := &models.SocialMetric{
				CampaignID:      campaign.ID,
				Platform:        platform,
				Date:            date,
				Impressions:     2000 + rng.Intn(18000),
				Engagement:      100 + rng.Intn(1400),
				Reach:           1500 + rng.Intn(12000),
				FollowersGained: rng.Intn(80),
				Clicks:          50 + rng.Intn(600),
			}
			if err := db.Create(metric).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedSEO(db *gorm.DB, rng *rand.Rand) error {
	now := time.Now()
	traffic := 8000
	backlinks := 300

	for day := seedHistoryDays; day > 0; day-- {
		traffic += rng.Intn(120) - 40
		backlinks += rng.Intn(5)

		metric := &models.SEOMetric{
			Date:            truncateDay(now.AddDate(0, 0, -day)),
			OrganicTraffic:  traffic,
			KeywordRankings: round2(12 + rng.Float64()*6),
			Backlinks:       backlinks,
			DomainAuthority: round2(38 + rng.Float64()*4),
		}
		if err := db.Create(metric).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedTrackingConfig(db *gorm.DB) error {
	for _, platform := range []string{"instagram", "facebook", "twitter", "linkedin", "tiktok", "youtube"} {
		config := &models.TrackingConfig{
			Platform:         platform,
			TrackImpressions: true,
			TrackEngagement:  true,
			TrackFollowers:   true,
		}
		if err := db.Create(config).Error; err != nil {
			return err
		}
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
