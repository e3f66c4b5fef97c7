package services

import (
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/shotlist/analytics-backend/internal/auth"
	"github.com/shotlist/analytics-backend/internal/config"
	"github.com/shotlist/analytics-backend/internal/integrations/figma"
	"github.com/shotlist/analytics-backend/internal/integrations/notion"
	"github.com/shotlist/analytics-backend/internal/integrations/oauth"
	"github.com/shotlist/analytics-backend/internal/integrations/social"
	"github.com/shotlist/analytics-backend/internal/websocket"
)

// Container holds all service instances.
type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	WSHub  *websocket.Hub
	Log    zerolog.Logger

	Auth        *auth.Service
	RateLimiter *auth.RateLimiter
	Metrics     *MetricsService
	Campaign    *CampaignService
	Social      *SocialService
	Ads         *AdsService

	OAuth    *oauth.Service
	Fetchers social.FetcherRegistry
	Notion   *notion.Client
	Figma    *figma.Client
}

func NewContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, wsHub *websocket.Hub, log zerolog.Logger) *Container {
	c := &Container{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		WSHub:  wsHub,
		Log:    log,
	}

	c.Auth = auth.NewService(db, log)
	c.RateLimiter = auth.NewRateLimiter(redisClient)

	c.OAuth = oauth.NewService(db, oauth.Providers(cfg), cfg.StateSigningSecret, cfg.VendorTimeout)
	c.Fetchers = social.NewFetcherRegistry(cfg.VendorTimeout)
	c.Notion = notion.NewClient(cfg.VendorTimeout)
	c.Figma = figma.NewClient(cfg.VendorTimeout)

	c.Metrics = NewMetricsService(c)
	c.Campaign = NewCampaignService(c)
	c.Social = NewSocialService(c)
	c.Ads = NewAdsService(c)

	return c
}
