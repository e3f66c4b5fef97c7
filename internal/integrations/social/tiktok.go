package social

import (
	"context"
	"encoding/json"
	"net/http"
)

// TikTokClient reads creator metrics through the TikTok open API.
type TikTokClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewTikTokClient(httpClient *http.Client) *TikTokClient {
	return &TikTokClient{
		httpClient: httpClient,
		baseURL:    "https://open.tiktokapis.com/v2",
	}
}

func (c *TikTokClient) Platform() string {
	return "tiktok"
}

func (c *TikTokClient) FetchMetrics(ctx context.Context, accessToken string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		c.baseURL+"/user/info/?fields=follower_count,likes_count,video_count", nil)
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
			User struct {
				FollowerCount int `json:"follower_count"`
				LikesCount    int `json:"likes_count"`
				VideoCount    int `json:"video_count"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &Snapshot{
		Followers: result.Data.User.FollowerCount,
		Likes:     result.Data.User.LikesCount,
	}, nil
}
