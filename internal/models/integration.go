package models

import (
	"time"
)

// AdPlatformConfig stores ad-platform credentials per user. Reconnecting
// the same platform replaces the stored credentials.
type AdPlatformConfig struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID      uint       `gorm:"uniqueIndex:idx_ads_key;not null" json:"user_id"`
	Platform    string     `gorm:"size:30;uniqueIndex:idx_ads_key;not null" json:"platform"`
	Credentials string     `gorm:"type:text;not null" json:"-"`
	SyncEnabled bool       `gorm:"default:false" json:"sync_enabled"`
	ConnectedAt time.Time  `gorm:"autoCreateTime" json:"connected_at"`
	LastSync    *time.Time `json:"last_sync,omitempty"`
}

type NotionConfig struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID        uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	APIKey        string     `gorm:"type:text;not null" json:"-"`
	DatabaseID    string     `gorm:"size:100;not null" json:"database_id"`
	SyncEnabled   bool       `gorm:"default:false" json:"sync_enabled"`
	Bidirectional bool       `gorm:"default:false" json:"bidirectional"`
	ConnectedAt   time.Time  `gorm:"autoCreateTime" json:"connected_at"`
	LastSync      *time.Time `json:"last_sync,omitempty"`
}

type FigmaSyncConfig struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"config_id"`
	FilePath      string     `gorm:"size:500;uniqueIndex;not null" json:"file_path"`
	SyncDirection string     `gorm:"size:20" json:"sync_direction"`
	NodeCount     int        `gorm:"default:0" json:"node_count"`
	Settings      string     `gorm:"type:text" json:"settings"`
	LastSync      *time.Time `json:"last_sync,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
