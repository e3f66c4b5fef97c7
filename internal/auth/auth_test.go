package auth

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shotlist/analytics-backend/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.LoginAttempt{},
	))

	return NewService(db, zerolog.Nop())
}

func registerUser(t *testing.T, s *Service, username, email, password string) *models.User {
	t.Helper()
	user, err := s.Register(&RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestLoginVerifiesPassword(t *testing.T) {
	s := newTestService(t)
	registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	user, token, err := s.Login(&LoginRequest{Username: "techstartup", Password: "demo1234"}, "127.0.0.1", "test")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "techstartup", user.Username)
	assert.NotNil(t, user.LastLogin)

	_, _, err = s.Login(&LoginRequest{Username: "techstartup", Password: "wrong-password"}, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginByEmail(t *testing.T) {
	s := newTestService(t)
	registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	_, token, err := s.Login(&LoginRequest{Email: "Contact@TechStartup.io", Password: "demo1234"}, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

// Unknown usernames and wrong passwords must be indistinguishable to
// the caller; the granular reason only lands in login_attempts.
func TestLoginErrorDoesNotLeakAccountExistence(t *testing.T) {
	s := newTestService(t)
	registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	_, _, errUnknown := s.Login(&LoginRequest{Username: "nobody", Password: "demo1234"}, "", "")
	_, _, errWrongPw := s.Login(&LoginRequest{Username: "techstartup", Password: "nope-nope"}, "", "")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())

	var attempts []models.LoginAttempt
	require.NoError(t, s.db.Order("id").Find(&attempts).Error)
	require.Len(t, attempts, 2)
	assert.Equal(t, "user_not_found", attempts[0].Reason)
	assert.Equal(t, "invalid_password", attempts[1].Reason)
}

func TestLoginInactiveAccount(t *testing.T) {
	s := newTestService(t)
	user := registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")
	require.NoError(t, s.db.Model(user).Update("is_active", false).Error)

	_, _, err := s.Login(&LoginRequest{Username: "techstartup", Password: "demo1234"}, "", "")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	s := newTestService(t)

	_, err := s.Register(&RegisterRequest{Username: "x", Email: "x@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSessionExpiry(t *testing.T) {
	s := newTestService(t)
	user := registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	token, err := s.CreateSession(user.ID, false)
	require.NoError(t, err)

	resolved, err := s.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	// An expired row must not authenticate even though it still exists.
	require.NoError(t, s.db.Model(&models.Session{}).Where("id = ?", token).
		Update("expires_at", time.Now().Add(-time.Second)).Error)

	_, err = s.Authenticate(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var count int64
	s.db.Model(&models.Session{}).Where("id = ?", token).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAuthenticateUnknownToken(t *testing.T) {
	s := newTestService(t)

	_, err := s.Authenticate("no-such-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.Authenticate("")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRememberMeExtendsSession(t *testing.T) {
	s := newTestService(t)
	user := registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	short, err := s.CreateSession(user.ID, false)
	require.NoError(t, err)
	long, err := s.CreateSession(user.ID, true)
	require.NoError(t, err)

	var shortSession, longSession models.Session
	require.NoError(t, s.db.First(&shortSession, "id = ?", short).Error)
	require.NoError(t, s.db.First(&longSession, "id = ?", long).Error)

	assert.WithinDuration(t, time.Now().Add(sessionTTL), shortSession.ExpiresAt, time.Minute)
	assert.WithinDuration(t, time.Now().Add(sessionTTLRemember), longSession.ExpiresAt, time.Minute)
}

func TestMultipleConcurrentSessions(t *testing.T) {
	s := newTestService(t)
	registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	_, first, err := s.Login(&LoginRequest{Username: "techstartup", Password: "demo1234"}, "", "")
	require.NoError(t, err)
	_, second, err := s.Login(&LoginRequest{Username: "techstartup", Password: "demo1234"}, "", "")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	_, err = s.Authenticate(first)
	assert.NoError(t, err)
	_, err = s.Authenticate(second)
	assert.NoError(t, err)
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	s := newTestService(t)
	registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	_, caller, err := s.Login(&LoginRequest{Username: "techstartup", Password: "demo1234"}, "", "")
	require.NoError(t, err)
	_, other, err := s.Login(&LoginRequest{Username: "techstartup", Password: "demo1234"}, "", "")
	require.NoError(t, err)

	require.NoError(t, s.ChangePassword(caller, "demo1234", "brand-new-pass"))

	_, err = s.Authenticate(caller)
	assert.NoError(t, err, "calling session must survive")
	_, err = s.Authenticate(other)
	assert.ErrorIs(t, err, ErrUnauthorized, "other sessions must be revoked")

	_, _, err = s.Login(&LoginRequest{Username: "techstartup", Password: "demo1234"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Login(&LoginRequest{Username: "techstartup", Password: "brand-new-pass"}, "", "")
	assert.NoError(t, err)
}

func TestChangePasswordValidation(t *testing.T) {
	s := newTestService(t)
	registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	_, token, err := s.Login(&LoginRequest{Username: "techstartup", Password: "demo1234"}, "", "")
	require.NoError(t, err)

	assert.ErrorIs(t, s.ChangePassword(token, "demo1234", "short"), ErrWeakPassword)
	assert.ErrorIs(t, s.ChangePassword(token, "not-the-password", "long-enough-pass"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.ChangePassword("bogus-token", "demo1234", "long-enough-pass"), ErrUnauthorized)
}

func TestRevokeIsIdempotent(t *testing.T) {
	s := newTestService(t)
	user := registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	token, err := s.CreateSession(user.ID, false)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(token))
	require.NoError(t, s.Revoke(token))

	_, err = s.Authenticate(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCleanupExpiredSessions(t *testing.T) {
	s := newTestService(t)
	user := registerUser(t, s, "techstartup", "contact@techstartup.io", "demo1234")

	live, err := s.CreateSession(user.ID, false)
	require.NoError(t, err)
	dead, err := s.CreateSession(user.ID, false)
	require.NoError(t, err)
	require.NoError(t, s.db.Model(&models.Session{}).Where("id = ?", dead).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	removed, err := s.CleanupExpiredSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = s.Authenticate(live)
	assert.NoError(t, err)
}

func TestFindOrCreateOAuthUser(t *testing.T) {
	s := newTestService(t)

	user, err := s.FindOrCreateOAuthUser("google", "New@Example.com", "New User", "google-123")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, models.RoleClient, user.Role)

	again, err := s.FindOrCreateOAuthUser("google", "new@example.com", "New User", "google-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	s.db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
