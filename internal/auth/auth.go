package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shotlist/analytics-backend/internal/models"
)

// Common errors. Handlers translate these into the HTTP taxonomy;
// unknown-user and wrong-password both surface as ErrInvalidCredentials
// so responses cannot be used to enumerate accounts.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUnauthorized       = errors.New("invalid or expired session")
	ErrEmailExists        = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters long")
)

const (
	sessionTokenBytes = 32 // 256 bits of entropy

	sessionTTL         = 24 * time.Hour
	sessionTTLRemember = 30 * 24 * time.Hour
)

// Service owns credentials and sessions.
type Service struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// Register creates a local-credential user with role client.
func (s *Service) Register(req *RegisterRequest) (*models.User, error) {
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := s.db.Where("email = ? OR username = ?", email, req.Username).First(&existing).Error; err == nil {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: string(hashed),
		Role:         models.RoleClient,
		Provider:     "email",
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and opens a new session. The identifier
// may be a username or an email address. Prior sessions stay valid.
func (s *Service) Login(req *LoginRequest, ip, userAgent string) (*models.User, string, error) {
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	var user models.User
	if err := s.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
		s.recordAttempt(identifier, false, "user_not_found", ip, userAgent)
		s.log.Warn().Str("identifier", identifier).Msg("Login attempt for unknown user")
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordAttempt(identifier, false, "invalid_password", ip, userAgent)
		s.log.Warn().Str("identifier", identifier).Msg("Failed login attempt")
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recordAttempt(identifier, false, "account_inactive", ip, userAgent)
		s.log.Warn().Str("identifier", identifier).Msg("Login attempt for inactive account")
		return nil, "", ErrAccountInactive
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login", now)
	user.LastLogin = &now

	token, err := s.CreateSession(user.ID, req.RememberMe)
	if err != nil {
		return nil, "", err
	}

	s.recordAttempt(identifier, true, "", ip, userAgent)
	return &user, token, nil
}

// CreateSession issues an opaque random token. Multiple concurrent
// sessions per user are allowed.
func (s *Service) CreateSession(userID uint, remember bool) (string, error) {
	token, err := generateToken(sessionTokenBytes)
	if err != nil {
		return "", err
	}

	ttl := sessionTTL
	if remember {
		ttl = sessionTTLRemember
	}

	session := &models.Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.Create(session).Error; err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a session token to its owning user. Unknown
// and expired tokens are indistinguishable to the caller.
func (s *Service) Authenticate(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var session models.Session
	if err := s.db.Where("id = ? AND expires_at > ?", token, time.Now()).First(&session).Error; err != nil {
		return nil, ErrUnauthorized
	}

	var user models.User
	if err := s.db.First(&user, session.UserID).Error; err != nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return &user, nil
}

// Revoke deletes a session. Revoking an absent token is a no-op.
func (s *Service) Revoke(token string) error {
	return s.db.Where("id = ?", token).Delete(&models.Session{}).Error
}

// ChangePassword rotates the credential and revokes every session of
// the user except the one making the request.
func (s *Service) ChangePassword(token, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	user, err := s.Authenticate(token)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		s.log.Warn().Str("email", user.Email).Msg("Failed password change attempt")
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("password_hash", string(hashed)).Error; err != nil {
		return err
	}

	// Force re-login everywhere else.
	if err := s.db.Where("user_id = ? AND id != ?", user.ID, token).
		Delete(&models.Session{}).Error; err != nil {
		return err
	}

	s.log.Info().Str("email", user.Email).Msg("Password changed")
	return nil
}

// FindOrCreateOAuthUser is the first-login path for social providers.
func (s *Service) FindOrCreateOAuthUser(provider, email, fullName, oauthID string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		now := time.Now()
		s.db.Model(&user).Update("last_login", now)
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Username: email,
		Email:    email,
		FullName: fullName,
		Role:     models.RoleClient,
		Provider: provider,
		OAuthID:  oauthID,
		IsActive: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	s.log.Info().Str("provider", provider).Str("email", email).Msg("Created user from OAuth first login")
	return &user, nil
}

// CleanupExpiredSessions removes rows whose expiry has passed. Expiry
// is enforced at lookup time regardless; this only reclaims space.
func (s *Service) CleanupExpiredSessions() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

func (s *Service) recordAttempt(email string, success bool, reason, ip, userAgent string) {
	s.db.Create(&models.LoginAttempt{
		Email:     email,
		Success:   success,
		Reason:    reason,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
