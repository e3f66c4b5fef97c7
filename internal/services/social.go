package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shotlist/analytics-backend/internal/models"
)

// ErrAccountExists signals the (user, platform, username) uniqueness
// conflict; handlers map it to 409.
var ErrAccountExists = errors.New("account already exists for this user on this platform")

// ErrNotFound is the generic missing-resource error for this service.
var ErrNotFound = errors.New("not found")

// SocialService owns connected accounts, their settings and the
// per-account metric time series.
type SocialService struct {
	container *Container
}

func NewSocialService(c *Container) *SocialService {
	return &SocialService{container: c}
}

type ConnectAccountRequest struct {
	Platform     string `json:"platform" binding:"required"`
	Username     string `json:"username" binding:"required"`
	AccountEmail string `json:"account_email" binding:"required"`
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token"`
}

// ConnectAccount inserts a new platform account. Re-adding the same
// (platform, username) for a user is a conflict, not an overwrite.
func (s *SocialService) ConnectAccount(userID uint, req *ConnectAccountRequest, ip string) (*models.SocialAccount, error) {
	platform := strings.ToLower(req.Platform)

	var existing models.SocialAccount
	err := s.container.DB.Where("user_id = ? AND platform = ? AND username = ?",
		userID, platform, req.Username).First(&existing).Error
	if err == nil {
		return nil, ErrAccountExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	account := &models.SocialAccount{
		UserID:       userID,
		Platform:     platform,
		Username:     req.Username,
		AccountEmail: req.AccountEmail,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		IsConnected:  true,
		LastSync:     &now,
	}
	if err := s.container.DB.Create(account).Error; err != nil {
		// Unique index race: a concurrent insert of the same key wins.
		return nil, ErrAccountExists
	}

	s.audit(account.ID, "connected", "success", fmt.Sprintf("%s account %s connected", platform, req.Username), ip)
	return account, nil
}

func (s *SocialService) Accounts(userID uint) ([]models.SocialAccount, error) {
	var accounts []models.SocialAccount
	err := s.container.DB.Where("user_id = ?", userID).
		Order("connection_date DESC").
		Find(&accounts).Error
	return accounts, err
}

// Disconnect removes every account the user has on the platform.
func (s *SocialService) Disconnect(userID uint, platform string, ip string) error {
	platform = strings.ToLower(platform)

	var accounts []models.SocialAccount
	if err := s.container.DB.Where("user_id = ? AND platform = ?", userID, platform).
		Find(&accounts).Error; err != nil {
		return err
	}
	if len(accounts) == 0 {
		return ErrNotFound
	}

	if err := s.container.DB.Where("user_id = ? AND platform = ?", userID, platform).
		Delete(&models.SocialAccount{}).Error; err != nil {
		return err
	}

	for _, account := range accounts {
		s.audit(account.ID, "disconnected", "success", platform+" account disconnected", ip)
	}
	return nil
}

func (s *SocialService) Settings(userID uint) (*models.SocialSettings, error) {
	var settings models.SocialSettings
	err := s.container.DB.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Defaults, not yet persisted.
		return &models.SocialSettings{
			UserID:               userID,
			AnalyticsEnabled:     true,
			NotificationsEnabled: true,
			SyncFollowers:        true,
			SyncEngagement:       true,
			SyncAnalytics:        true,
		}, nil
	}
	return &settings, err
}

// SaveSettings upserts the singleton settings row per user.
func (s *SocialService) SaveSettings(userID uint, settings *models.SocialSettings) error {
	settings.UserID = userID
	return s.container.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(settings).Error
}

func (s *SocialService) TrackingConfig() ([]models.TrackingConfig, error) {
	var configs []models.TrackingConfig
	err := s.container.DB.Find(&configs).Error
	return configs, err
}

func (s *SocialService) SaveTrackingConfig(configs []models.TrackingConfig) error {
	for i := range configs {
		configs[i].Platform = strings.ToLower(configs[i].Platform)
		if err := s.container.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform"}},
			UpdateAll: true,
		}).Create(&configs[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// AddDailyMetrics upserts the snapshot for (account, platform, date).
// A second insert for the same key overwrites the first: the values
// are latest-snapshot-wins, not additive.
func (s *SocialService) AddDailyMetrics(metric *models.DailyMetric) error {
	metric.Platform = strings.ToLower(metric.Platform)
	if metric.Date == "" {
		metric.Date = time.Now().Format("2006-01-02")
	}
	return s.container.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "platform"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(metric).Error
}

func (s *SocialService) DailyMetrics(accountID uint, platform string, days int) ([]models.DailyMetric, error) {
	since := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	var metrics []models.DailyMetric
	err := s.container.DB.
		Where("account_id = ? AND platform = ? AND date >= ?", accountID, strings.ToLower(platform), since).
		Order("date ASC").
		Find(&metrics).Error
	return metrics, err
}

// AddContentPerformance upserts per-post stats keyed by the post ID.
func (s *SocialService) AddContentPerformance(content *models.ContentPerformance) error {
	content.Platform = strings.ToLower(content.Platform)
	return s.container.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "platform"}, {Name: "post_id"}},
		UpdateAll: true,
	}).Create(content).Error
}

func (s *SocialService) TopContent(accountID uint, platform string, limit int) ([]models.ContentPerformance, error) {
	if limit <= 0 {
		limit = 10
	}
	var content []models.ContentPerformance
	err := s.container.DB.
		Where("account_id = ? AND platform = ?", accountID, strings.ToLower(platform)).
		Order("engagement_rate DESC").
		Limit(limit).
		Find(&content).Error
	return content, err
}

func (s *SocialService) AddAudienceDemographics(demo *models.AudienceDemographic) error {
	demo.Platform = strings.ToLower(demo.Platform)
	if demo.Date == "" {
		demo.Date = time.Now().Format("2006-01-02")
	}
	return s.container.DB.Create(demo).Error
}

// AudienceInsights returns the latest demographics snapshot.
func (s *SocialService) AudienceInsights(accountID uint, platform string) (*models.AudienceDemographic, error) {
	var demo models.AudienceDemographic
	err := s.container.DB.
		Where("account_id = ? AND platform = ?", accountID, strings.ToLower(platform)).
		Order("date DESC").
		First(&demo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &demo, err
}

// PerformanceSummary is a trailing-30-day snapshot per account.
type PerformanceSummary struct {
	Followers        int     `json:"followers"`
	AvgEngagement    float64 `json:"avg_engagement_rate"`
	TotalReach       int     `json:"total_reach"`
	TotalImpressions int     `json:"total_impressions"`
	TotalLikes       int     `json:"total_likes"`
	TotalComments    int     `json:"total_comments"`
	TotalShares      int     `json:"total_shares"`
}

func (s *SocialService) PerformanceSummary(accountID uint, platform string) (*PerformanceSummary, error) {
	since := time.Now().AddDate(0, 0, -30).Format("2006-01-02")

	summary := &PerformanceSummary{}
	type row struct {
		Followers   int
		Engagement  float64
		Reach       int
		Impressions int
		Likes       int
		Comments    int
		Shares      int
	}
	var agg row
	err := s.container.DB.Model(&models.DailyMetric{}).
		Select(`COALESCE(MAX(followers), 0)        AS followers,
			COALESCE(AVG(engagement_rate), 0) AS engagement,
			COALESCE(SUM(reach), 0)           AS reach,
			COALESCE(SUM(impressions), 0)     AS impressions,
			COALESCE(SUM(likes), 0)           AS likes,
			COALESCE(SUM(comments), 0)        AS comments,
			COALESCE(SUM(shares), 0)          AS shares`).
		Where("account_id = ? AND platform = ? AND date >= ?", accountID, strings.ToLower(platform), since).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	summary.Followers = agg.Followers
	summary.AvgEngagement = round2(agg.Engagement)
	summary.TotalReach = agg.Reach
	summary.TotalImpressions = agg.Impressions
	summary.TotalLikes = agg.Likes
	summary.TotalComments = agg.Comments
	summary.TotalShares = agg.Shares
	return summary, nil
}

func (s *SocialService) AuditLog(accountID uint, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.AuditEntry
	err := s.container.DB.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// SyncResult reports a multi-account sync with partial-failure
// semantics: one bad account does not abort the rest.
type SyncResult struct {
	Synced    int       `json:"synced"`
	Failed    int       `json:"failed"`
	Errors    []string  `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncAll fetches the current metrics for each connected account and
// stores them as today's snapshot. Progress is broadcast to the owning
// user's websocket clients.
func (s *SocialService) SyncAll(ctx context.Context, userID uint) (*SyncResult, error) {
	accounts, err := s.Accounts(userID)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Errors: []string{}, Timestamp: time.Now()}
	s.broadcast(userID, "sync:started", map[string]interface{}{"accounts": len(accounts)})

	for _, account := range accounts {
		if !account.IsConnected {
			continue
		}
		if err := s.syncAccount(ctx, &account); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", account.Platform, err))
			s.audit(account.ID, "sync", "failed", err.Error(), "")
			s.container.Log.Error().Err(err).
				Str("platform", account.Platform).
				Uint("account_id", account.ID).
				Msg("Metrics sync failed")
		} else {
			result.Synced++
			s.audit(account.ID, "sync", "success", "daily metrics synced", "")
		}
		s.broadcast(userID, "sync:account", map[string]interface{}{
			"account_id": account.ID,
			"platform":   account.Platform,
			"synced":     result.Synced,
			"failed":     result.Failed,
		})
	}

	s.broadcast(userID, "sync:completed", result)
	return result, nil
}

func (s *SocialService) syncAccount(ctx context.Context, account *models.SocialAccount) error {
	fetcher, ok := s.container.Fetchers[account.Platform]
	if !ok {
		return fmt.Errorf("unsupported platform %q", account.Platform)
	}

	snapshot, err := fetcher.FetchMetrics(ctx, account.AccessToken)
	if err != nil {
		return err
	}

	metric := &models.DailyMetric{
		AccountID:      account.ID,
		Platform:       account.Platform,
		Date:           time.Now().Format("2006-01-02"),
		Followers:      snapshot.Followers,
		EngagementRate: snapshot.EngagementRate,
		Reach:          snapshot.Reach,
		Impressions:    snapshot.Impressions,
		Shares:         snapshot.Shares,
		Comments:       snapshot.Comments,
		Likes:          snapshot.Likes,
		Clicks:         snapshot.Clicks,
		VideoViews:     snapshot.VideoViews,
		ProfileVisits:  snapshot.ProfileVisits,
	}
	if err := s.AddDailyMetrics(metric); err != nil {
		return err
	}

	now := time.Now()
	return s.container.DB.Model(account).Update("last_sync", now).Error
}

func (s *SocialService) broadcast(userID uint, event string, payload interface{}) {
	if s.container.WSHub != nil {
		s.container.WSHub.BroadcastToUser(fmt.Sprint(userID), event, payload)
	}
}

func (s *SocialService) audit(accountID uint, action, status, details, ip string) {
	s.container.DB.Create(&models.AuditEntry{
		AccountID: accountID,
		Action:    action,
		Status:    status,
		Details:   details,
		IPAddress: ip,
	})
}
