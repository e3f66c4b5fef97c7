package models

import (
	"time"
)

// SocialAccount is a connected per-platform account owned by a user.
// The (user, platform, username) key is what makes re-adding the same
// account a conflict rather than a silent overwrite.
type SocialAccount struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"account_id"`
	UserID         uint       `gorm:"uniqueIndex:idx_account_key;not null" json:"user_id"`
	Platform       string     `gorm:"size:30;uniqueIndex:idx_account_key;not null" json:"platform"`
	Username       string     `gorm:"size:200;uniqueIndex:idx_account_key;not null" json:"username"`
	AccountEmail   string     `gorm:"size:255" json:"account_email"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	TokenExpiresAt *time.Time `json:"-"`
	IsConnected    bool       `json:"is_connected"`
	ConnectionDate time.Time  `gorm:"autoCreateTime" json:"connection_date"`
	LastSync       *time.Time `json:"last_sync,omitempty"`
	SyncFrequency  string     `gorm:"size:20;default:'daily'" json:"sync_frequency"`
}

type SocialSettings struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID               uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	AutoPost             bool      `json:"auto_post"`
	AutoSchedule         bool      `json:"auto_schedule"`
	AnalyticsEnabled     bool      `json:"analytics_enabled"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	SyncFollowers        bool      `json:"sync_followers"`
	SyncEngagement       bool      `json:"sync_engagement"`
	SyncAnalytics        bool      `json:"sync_analytics"`
	CreatedAt            time.Time `json:"-"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DailyMetric holds one snapshot per (account, platform, day). Inserts
// for an existing key overwrite the row: latest snapshot wins, the
// values are not additive.
type DailyMetric struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	AccountID      uint      `gorm:"uniqueIndex:idx_daily_key;not null" json:"account_id"`
	Platform       string    `gorm:"size:30;uniqueIndex:idx_daily_key;not null" json:"platform"`
	Date           string    `gorm:"size:10;uniqueIndex:idx_daily_key;not null" json:"date"`
	Followers      int       `json:"followers"`
	EngagementRate float64   `json:"engagement_rate"`
	Reach          int       `json:"reach"`
	Impressions    int       `json:"impressions"`
	Shares         int       `json:"shares"`
	Comments       int       `json:"comments"`
	Likes          int       `json:"likes"`
	Clicks         int       `json:"clicks"`
	Saves          int       `json:"saves"`
	VideoViews     int       `json:"video_views"`
	ProfileVisits  int       `json:"profile_visits"`
	Mentions       int       `json:"mentions"`
	CreatedAt      time.Time `json:"-"`
}

type ContentPerformance struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"content_id"`
	AccountID      uint       `gorm:"uniqueIndex:idx_content_key;not null" json:"account_id"`
	Platform       string     `gorm:"size:30;uniqueIndex:idx_content_key;not null" json:"platform"`
	PostID         string     `gorm:"size:200;uniqueIndex:idx_content_key;not null" json:"post_id"`
	PostType       string     `gorm:"size:50" json:"post_type"`
	Caption        string     `gorm:"type:text" json:"caption"`
	Hashtags       string     `gorm:"type:text" json:"hashtags"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	Likes          int        `json:"likes"`
	Comments       int        `json:"comments"`
	Shares         int        `json:"shares"`
	Saves          int        `json:"saves"`
	Views          int        `json:"views"`
	Reach          int        `json:"reach"`
	EngagementRate float64    `json:"engagement_rate"`
	CreatedAt      time.Time  `json:"-"`
}

type AudienceDemographic struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"demographic_id"`
	AccountID        uint      `gorm:"index;not null" json:"account_id"`
	Platform         string    `gorm:"size:30;not null" json:"platform"`
	Date             string    `gorm:"size:10;not null" json:"date"`
	Age13To17        float64   `json:"age_13_17"`
	Age18To24        float64   `json:"age_18_24"`
	Age25To34        float64   `json:"age_25_34"`
	Age35To44        float64   `json:"age_35_44"`
	Age45To54        float64   `json:"age_45_54"`
	Age55To64        float64   `json:"age_55_64"`
	Age65Plus        float64   `json:"age_65_plus"`
	MalePercentage   float64   `json:"male_percentage"`
	FemalePercentage float64   `json:"female_percentage"`
	TopCountries     string    `gorm:"type:text" json:"top_countries"`
	TopCities        string    `gorm:"type:text" json:"top_cities"`
	CreatedAt        time.Time `json:"-"`
}

// AuditEntry records connect/disconnect/sync actions per account.
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"audit_id"`
	AccountID uint      `gorm:"index;not null" json:"account_id"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Status    string    `gorm:"size:30" json:"status"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:50" json:"ip_address"`
	CreatedAt time.Time `json:"timestamp"`
}
