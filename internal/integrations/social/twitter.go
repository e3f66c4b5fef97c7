package social

import (
	"context"
	"encoding/json"
	"net/http"
)

// TwitterClient reads account metrics through the X/Twitter API v2.
// The v2 user endpoint exposes follower and tweet counts; per-day
// impressions need the paid tier, so those fields stay zero.
type TwitterClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewTwitterClient(httpClient *http.Client) *TwitterClient {
	return &TwitterClient{
		httpClient: httpClient,
		baseURL:    "https://api.twitter.com/2",
	}
}

func (c *TwitterClient) Platform() string {
	return "twitter"
}

func (c *TwitterClient) FetchMetrics(ctx context.Context, accessToken string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		c.baseURL+"/users/me?user.fields=public_metrics", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result struct {
		Data struct {
			PublicMetrics struct {
				FollowersCount int `json:"followers_count"`
				TweetCount     int `json:"tweet_count"`
				ListedCount    int `json:"listed_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &Snapshot{
		Followers: result.Data.PublicMetrics.FollowersCount,
	}, nil
}
