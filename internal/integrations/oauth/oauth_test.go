package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shotlist/analytics-backend/internal/models"
)

func newTestService(t *testing.T, providers map[string]Provider) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:oauth_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.OAuthState{}))

	return NewService(db, providers, "test-signing-secret", 5*time.Second)
}

func testProviders(authURL, tokenURL, userinfoURL string) map[string]Provider {
	return map[string]Provider{
		"google": {
			Name:             "google",
			AuthorizationURL: authURL,
			TokenURL:         tokenURL,
			UserinfoURL:      userinfoURL,
			Scope:            "openid email profile",
			ClientID:         "client-id",
			ClientSecret:     "client-secret",
			RedirectURI:      "http://localhost:8000/oauth/callback/google",
		},
	}
}

func TestAuthorizeURLUnknownProvider(t *testing.T) {
	s := newTestService(t, testProviders("https://auth.example", "", ""))

	_, err := s.AuthorizeURL("myspace")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestStateIsSingleUse(t *testing.T) {
	s := newTestService(t, testProviders("https://auth.example", "", ""))

	url, err := s.AuthorizeURL("google")
	require.NoError(t, err)

	state := extractQueryParam(t, url, "state")
	require.NotEmpty(t, state)

	require.NoError(t, s.VerifyState("google", state))
	assert.ErrorIs(t, s.VerifyState("google", state), ErrInvalidState, "replay must fail")
}

func TestStateBoundToProvider(t *testing.T) {
	providers := testProviders("https://auth.example", "", "")
	providers["github"] = Provider{Name: "github", AuthorizationURL: "https://gh.example"}
	s := newTestService(t, providers)

	url, err := s.AuthorizeURL("google")
	require.NoError(t, err)
	state := extractQueryParam(t, url, "state")

	assert.ErrorIs(t, s.VerifyState("github", state), ErrInvalidState)
}

func TestStateTamperingDetected(t *testing.T) {
	s := newTestService(t, testProviders("https://auth.example", "", ""))

	url, err := s.AuthorizeURL("google")
	require.NoError(t, err)
	state := extractQueryParam(t, url, "state")

	assert.ErrorIs(t, s.VerifyState("google", state+"x"), ErrInvalidState)
	assert.ErrorIs(t, s.VerifyState("google", "not-a-jwt"), ErrInvalidState)
}

func TestExchangeAndUserinfo(t *testing.T) {
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
			assert.Equal(t, "the-code", r.FormValue("code"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"vendor-token","token_type":"Bearer","expires_in":3600}`)
		case "/userinfo":
			assert.Equal(t, "Bearer vendor-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"user-42","email":"jane@example.com","name":"Jane Doe"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer vendor.Close()

	s := newTestService(t, testProviders("https://auth.example", vendor.URL+"/token", vendor.URL+"/userinfo"))

	token, err := s.Exchange(context.Background(), "google", "the-code")
	require.NoError(t, err)
	assert.Equal(t, "vendor-token", token.AccessToken)

	info, err := s.Userinfo(context.Background(), "google", token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-42", info.ProviderUserID)
	assert.Equal(t, "jane@example.com", info.Email)
	assert.Equal(t, "Jane Doe", info.FullName)
}

func TestUserinfoUnwrapsDataEnvelope(t *testing.T) {
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"id":"99","username":"janedoe"}}`)
	}))
	defer vendor.Close()

	s := newTestService(t, testProviders("https://auth.example", "", vendor.URL))

	info, err := s.Userinfo(context.Background(), "google", "tok")
	require.NoError(t, err)
	assert.Equal(t, "99", info.ProviderUserID)
	assert.Equal(t, "janedoe", info.FullName)
}

func TestCleanupStale(t *testing.T) {
	s := newTestService(t, testProviders("https://auth.example", "", ""))

	_, err := s.AuthorizeURL("google")
	require.NoError(t, err)

	// Fresh states survive the sweep.
	removed, err := s.CleanupStale()
	require.NoError(t, err)
	assert.Zero(t, removed)

	require.NoError(t, s.db.Model(&models.OAuthState{}).Where("1 = 1").
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	removed, err = s.CleanupStale()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func extractQueryParam(t *testing.T, rawURL, key string) string {
	t.Helper()
	parsed, err := neturl.Parse(rawURL)
	require.NoError(t, err)
	return parsed.Query().Get(key)
}
