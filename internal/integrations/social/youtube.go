package social

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// YouTubeClient reads channel statistics through the YouTube Data API.
type YouTubeClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewYouTubeClient(httpClient *http.Client) *YouTubeClient {
	return &YouTubeClient{
		httpClient: httpClient,
		baseURL:    "https://youtube.googleapis.com/youtube/v3",
	}
}

func (c *YouTubeClient) Platform() string {
	return "youtube"
}

func (c *YouTubeClient) FetchMetrics(ctx context.Context, accessToken string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		c.baseURL+"/channels?part=statistics&mine=true", nil)
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

	// The statistics counts come back as strings.
	var result struct {
		Items []struct {
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
				ViewCount       string `json:"viewCount"`
				VideoCount      string `json:"videoCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return &Snapshot{}, nil
	}

	stats := result.Items[0].Statistics
	subscribers, _ := strconv.Atoi(stats.SubscriberCount)
	views, _ := strconv.Atoi(stats.ViewCount)
	return &Snapshot{
		Followers:  subscribers,
		VideoViews: views,
	}, nil
}
