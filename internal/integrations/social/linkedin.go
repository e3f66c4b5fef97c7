package social

import (
	"context"
	"encoding/json"
	"net/http"
)

// LinkedInClient reads follower statistics through the LinkedIn REST API.
type LinkedInClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewLinkedInClient(httpClient *http.Client) *LinkedInClient {
	return &LinkedInClient{
		httpClient: httpClient,
		baseURL:    "https://api.linkedin.com/v2",
	}
}

func (c *LinkedInClient) Platform() string {
	return "linkedin"
}

func (c *LinkedInClient) FetchMetrics(ctx context.Context, accessToken string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		c.baseURL+"/networkSizes/urn:li:person:me?edgeType=CompanyFollowedByMember", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result struct {
		FirstDegreeSize int `json:"firstDegreeSize"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &Snapshot{Followers: result.FirstDegreeSize}, nil
}
