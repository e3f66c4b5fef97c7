package models

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Username     string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName     string     `gorm:"size:200" json:"full_name"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Role         Role       `gorm:"size:20;default:'client'" json:"role"`
	Provider     string     `gorm:"size:30;default:'email'" json:"-"`
	OAuthID      string     `gorm:"size:255" json:"-"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is an opaque bearer credential. The token itself is the
// primary key; validity is checked at lookup time and expired rows are
// swept lazily by the scheduler.
type Session struct {
	ID        string    `gorm:"size:64;primaryKey" json:"session_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}

// OAuthState is a single-use CSRF token for the social-login flow.
type OAuthState struct {
	State     string `gorm:"size:512;primaryKey"`
	Provider  string `gorm:"size:30;not null"`
	CreatedAt time.Time
}

// LoginAttempt keeps the granular outcome of each login server-side.
// Clients only ever see a generic invalid-credentials response.
type LoginAttempt struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Email     string `gorm:"size:255;index;not null"`
	Success   bool   `gorm:"default:false"`
	Reason    string `gorm:"size:50"`
	IPAddress string `gorm:"size:50"`
	UserAgent string `gorm:"size:500"`
	CreatedAt time.Time
}
