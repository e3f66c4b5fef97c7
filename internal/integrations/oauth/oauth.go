// Package oauth implements the authorization-code flow against a fixed
// set of identity providers. The provider set is closed: callback
// handling never touches a URL that is not in the map.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shotlist/analytics-backend/internal/models"
)

var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrInvalidState    = errors.New("invalid or expired oauth state")
)

const stateTTL = 10 * time.Minute

// Provider holds the endpoints and credentials for one identity
// provider.
type Provider struct {
	Name             string
	AuthorizationURL string
	TokenURL         string
	UserinfoURL      string
	Scope            string
	ClientID         string
	ClientSecret     string
	RedirectURI      string
}

// Token is the provider's response to a code exchange.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
}

// UserInfo is the normalized identity extracted from a provider's
// userinfo response.
type UserInfo struct {
	ProviderUserID string `json:"provider_user_id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
}

type Service struct {
	db          *gorm.DB
	providers   map[string]Provider
	stateSecret []byte
	httpClient  *http.Client
}

func NewService(db *gorm.DB, providers map[string]Provider, stateSecret string, timeout time.Duration) *Service {
	return &Service{
		db:          db,
		providers:   providers,
		stateSecret: []byte(stateSecret),
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (s *Service) Provider(name string) (Provider, error) {
	provider, ok := s.providers[strings.ToLower(name)]
	if !ok {
		return Provider{}, ErrUnknownProvider
	}
	return provider, nil
}

// AuthorizeURL builds the provider redirect with a fresh signed state.
// The state is also persisted so that VerifyState can make it
// single-use.
func (s *Service) AuthorizeURL(providerName string) (string, error) {
	provider, err := s.Provider(providerName)
	if err != nil {
		return "", err
	}

	state, err := s.issueState(provider.Name)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("client_id", provider.ClientID)
	query.Set("redirect_uri", provider.RedirectURI)
	query.Set("response_type", "code")
	query.Set("scope", provider.Scope)
	query.Set("state", state)
	return provider.AuthorizationURL + "?" + query.Encode(), nil
}

func (s *Service) issueState(providerName string) (string, error) {
	claims := jwt.MapClaims{
		"provider": providerName,
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(stateTTL).Unix(),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.stateSecret)
	if err != nil {
		return "", err
	}

	record := &models.OAuthState{State: state, Provider: providerName}
	if err := s.db.Create(record).Error; err != nil {
		return "", err
	}
	return state, nil
}

// VerifyState checks the signature, expiry and provider binding of a
// state token, then consumes it. A replayed state fails on the consume
// step because the row is already gone.
func (s *Service) VerifyState(providerName, state string) error {
	token, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.stateSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidState
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["provider"] != strings.ToLower(providerName) {
		return ErrInvalidState
	}

	result := s.db.Where("state = ?", state).Delete(&models.OAuthState{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidState
	}
	return nil
}

// Exchange swaps an authorization code for tokens.
func (s *Service) Exchange(ctx context.Context, providerName, code string) (*Token, error) {
	provider, err := s.Provider(providerName)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", provider.RedirectURI)
	form.Set("client_id", provider.ClientID)
	form.Set("client_secret", provider.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", provider.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token exchange failed with %d: %s", resp.StatusCode, string(body))
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, errors.New("token exchange returned no access token")
	}
	return &token, nil
}

// Userinfo fetches and normalizes the provider's identity payload.
func (s *Service) Userinfo(ctx context.Context, providerName, accessToken string) (*UserInfo, error) {
	provider, err := s.Provider(providerName)
	if err != nil {
		return nil, err
	}
	if provider.UserinfoURL == "" {
		return nil, fmt.Errorf("provider %s has no userinfo endpoint", provider.Name)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", provider.UserinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo failed with %d: %s", resp.StatusCode, string(body))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	// Twitter wraps the user object in a data envelope.
	if data, ok := payload["data"].(map[string]interface{}); ok {
		payload = data
	}

	info := &UserInfo{
		ProviderUserID: firstString(payload, "id", "sub"),
		Email:          firstString(payload, "email"),
		FullName:       firstString(payload, "name", "full_name", "login", "username"),
	}
	if info.ProviderUserID == "" {
		return nil, errors.New("userinfo response has no user id")
	}
	return info, nil
}

func firstString(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// CleanupStale removes abandoned state rows older than their TTL.
func (s *Service) CleanupStale() (int64, error) {
	result := s.db.Where("created_at < ?", time.Now().Add(-stateTTL)).Delete(&models.OAuthState{})
	return result.RowsAffected, result.Error
}
