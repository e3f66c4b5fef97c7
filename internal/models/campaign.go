package models

import (
	"time"
)

type Campaign struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"campaign_id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	CampaignName string    `gorm:"size:200;not null" json:"campaign_name"`
	ClientName   string    `gorm:"size:200" json:"client_name"`
	CampaignType string    `gorm:"size:50;index" json:"campaign_type"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Budget       float64   `json:"budget"`
	Status       string    `gorm:"size:30;index;default:'active'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// ROIMetric rows are append-only per (campaign, date); they are only
// ever aggregated, never mutated individually.
type ROIMetric struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	CampaignID    uint      `gorm:"index;not null" json:"campaign_id"`
	Date          time.Time `gorm:"index;not null" json:"date"`
	Revenue       float64   `json:"revenue"`
	Cost          float64   `json:"cost"`
	Conversions   int       `json:"conversions"`
	ROIPercentage float64   `gorm:"column:roi_percentage" json:"roi_percentage"`
	ROAS          float64   `gorm:"column:roas" json:"roas"`
	CreatedAt     time.Time `json:"-"`
}

type SEOMetric struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Date            time.Time `gorm:"index;not null" json:"date"`
	OrganicTraffic  int       `json:"organic_traffic"`
	KeywordRankings float64   `json:"keyword_rankings"`
	Backlinks       int       `json:"backlinks"`
	DomainAuthority float64   `json:"domain_authority"`
	CreatedAt       time.Time `json:"-"`
}

// SocialMetric is the campaign-level per-platform time series behind
// the dashboard's social panel.
type SocialMetric struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	CampaignID      uint      `gorm:"index;not null" json:"campaign_id"`
	Platform        string    `gorm:"size:30;index;not null" json:"platform"`
	Date            time.Time `gorm:"index;not null" json:"date"`
	Impressions     int       `json:"impressions"`
	Engagement      int       `json:"engagement"`
	Reach           int       `json:"reach"`
	FollowersGained int       `json:"followers_gained"`
	Clicks          int       `json:"clicks"`
	CreatedAt       time.Time `json:"-"`
}

// TrackingConfig masks which social panels are reported per platform.
type TrackingConfig struct {
	Platform         string `gorm:"size:30;primaryKey" json:"platform"`
	AccessToken      string `gorm:"type:text" json:"-"`
	TrackImpressions bool   `json:"track_impressions"`
	TrackEngagement  bool   `json:"track_engagement"`
	TrackFollowers   bool   `json:"track_followers"`
}
