package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// FacebookClient reads page metrics through the Facebook Graph API.
type FacebookClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewFacebookClient(httpClient *http.Client) *FacebookClient {
	return &FacebookClient{
		httpClient: httpClient,
		baseURL:    "https://graph.facebook.com/v18.0",
	}
}

func (c *FacebookClient) Platform() string {
	return "facebook"
}

func (c *FacebookClient) FetchMetrics(ctx context.Context, accessToken string) (*Snapshot, error) {
	url := fmt.Sprintf("%s/me?fields=followers_count,fan_count&access_token=%s", c.baseURL, accessToken)

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

	var page struct {
		FollowersCount int `json:"followers_count"`
		FanCount       int `json:"fan_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}

	followers := page.FollowersCount
	if followers == 0 {
		followers = page.FanCount
	}
	snapshot := &Snapshot{Followers: followers}

	insightsURL := fmt.Sprintf("%s/me/insights?metric=page_impressions,page_post_engagements,page_views_total&period=day&access_token=%s",
		c.baseURL, accessToken)
	req, err = http.NewRequestWithContext(ctx, "GET", insightsURL, nil)
	if err != nil {
		return nil, err
	}
	insightsResp, err := c.httpClient.Do(req)
	if err != nil {
		return snapshot, nil
	}
	defer insightsResp.Body.Close()
	if err := checkStatus(insightsResp); err != nil {
		return snapshot, nil
	}

	var insights struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if err := json.NewDecoder(insightsResp.Body).Decode(&insights); err != nil {
		return snapshot, nil
	}

	for _, metric := range insights.Data {
		if len(metric.Values) == 0 {
			continue
		}
		value := metric.Values[len(metric.Values)-1].Value
		switch metric.Name {
		case "page_impressions":
			snapshot.Impressions = value
			snapshot.Reach = value
		case "page_post_engagements":
			if followers > 0 {
				snapshot.EngagementRate = float64(value) / float64(followers) * 100
			}
		case "page_views_total":
			snapshot.ProfileVisits = value
		}
	}
	return snapshot, nil
}
