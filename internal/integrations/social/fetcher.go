// Package social holds the read-only metric fetchers for the supported
// social platforms. Each fetcher turns a stored access token into one
// day's metrics snapshot.
package social

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Common errors
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRateLimited          = errors.New("rate limited by platform")
)

// Snapshot is one day's worth of account metrics as reported by the
// platform. Missing fields stay zero.
type Snapshot struct {
	Followers      int     `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"`
	Reach          int     `json:"reach"`
	Impressions    int     `json:"impressions"`
	Shares         int     `json:"shares"`
	Comments       int     `json:"comments"`
	Likes          int     `json:"likes"`
	Clicks         int     `json:"clicks"`
	VideoViews     int     `json:"video_views"`
	ProfileVisits  int     `json:"profile_visits"`
}

// Fetcher is the read-only metrics interface a platform client must
// implement.
type Fetcher interface {
	Platform() string
	FetchMetrics(ctx context.Context, accessToken string) (*Snapshot, error)
}

// FetcherRegistry maps a platform name to its client.
type FetcherRegistry map[string]Fetcher

func NewFetcherRegistry(timeout time.Duration) FetcherRegistry {
	httpClient := &http.Client{Timeout: timeout}
	registry := FetcherRegistry{}
	for _, f := range []Fetcher{
		NewInstagramClient(httpClient),
		NewFacebookClient(httpClient),
		NewTwitterClient(httpClient),
		NewLinkedInClient(httpClient),
		NewTikTokClient(httpClient),
		NewYouTubeClient(httpClient),
	} {
		registry[f.Platform()] = f
	}
	return registry
}

// Platforms lists the registered platform names.
func (r FetcherRegistry) Platforms() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrAuthenticationFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
