package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shotlist/analytics-backend/internal/models"
)

// AdsService stores ad-platform credentials per user. Re-connecting a
// platform replaces the stored credentials in place.
type AdsService struct {
	container *Container
}

func NewAdsService(c *Container) *AdsService {
	return &AdsService{container: c}
}

type ConnectAdsRequest struct {
	Platform    string                 `json:"platform" binding:"required"`
	Credentials map[string]interface{} `json:"credentials" binding:"required"`
}

func (s *AdsService) Connect(userID uint, req *ConnectAdsRequest) (*models.AdPlatformConfig, error) {
	raw, err := json.Marshal(req.Credentials)
	if err != nil {
		return nil, err
	}

	config := &models.AdPlatformConfig{
		UserID:      userID,
		Platform:    strings.ToLower(req.Platform),
		Credentials: string(raw),
		SyncEnabled: true,
		ConnectedAt: time.Now(),
	}
	err = s.container.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		UpdateAll: true,
	}).Create(config).Error
	return config, err
}

// AdsStatus is the redacted view of a stored connection. Secrets never
// leave the service, only the identifying fields do.
type AdsStatus struct {
	Platform    string    `json:"platform"`
	IsConnected bool      `json:"is_connected"`
	AppID       string    `json:"app_id,omitempty"`
	AccountID   string    `json:"account_id,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
}

func (s *AdsService) Status(userID uint) ([]AdsStatus, error) {
	var configs []models.AdPlatformConfig
	if err := s.container.DB.Where("user_id = ?", userID).Find(&configs).Error; err != nil {
		return nil, err
	}

	statuses := make([]AdsStatus, 0, len(configs))
	for _, config := range configs {
		status := AdsStatus{
			Platform:    config.Platform,
			IsConnected: true,
			ConnectedAt: config.ConnectedAt,
		}
		var creds map[string]interface{}
		if err := json.Unmarshal([]byte(config.Credentials), &creds); err == nil {
			status.AppID, _ = creds["app_id"].(string)
			status.AccountID, _ = creds["account_id"].(string)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *AdsService) Disconnect(userID uint, platform string) error {
	result := s.container.DB.Where("user_id = ? AND platform = ?", userID, strings.ToLower(platform)).
		Delete(&models.AdPlatformConfig{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// NotionSettings upserts the user's Notion workspace binding after a
// live connection test.
func (s *AdsService) SaveNotionConfig(userID uint, apiKey, databaseID string) (*models.NotionConfig, error) {
	config := &models.NotionConfig{
		UserID:     userID,
		APIKey:     apiKey,
		DatabaseID: databaseID,
	}
	err := s.container.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(config).Error
	return config, err
}

func (s *AdsService) NotionConfig(userID uint) (*models.NotionConfig, error) {
	var config models.NotionConfig
	err := s.container.DB.Where("user_id = ?", userID).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &config, err
}

// SaveFigmaConfig upserts the sync binding for a design file.
func (s *AdsService) SaveFigmaConfig(config *models.FigmaSyncConfig) error {
	return s.container.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_path"}},
		UpdateAll: true,
	}).Create(config).Error
}

func (s *AdsService) FigmaConfigs() ([]models.FigmaSyncConfig, error) {
	var configs []models.FigmaSyncConfig
	err := s.container.DB.Order("created_at DESC").Find(&configs).Error
	return configs, err
}
