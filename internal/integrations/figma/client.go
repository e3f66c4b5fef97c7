// Package figma is a thin client for the Figma REST API, used to verify
// a file token and count the nodes a design sync would cover.
package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const baseURL = "https://api.figma.com/v1"

var ErrUnauthorized = errors.New("figma rejected the access token")

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// File is the metadata the sync setup needs: a name to show and a node
// count to size the sync.
type File struct {
	Name         string `json:"name"`
	LastModified string `json:"last_modified"`
	NodeCount    int    `json:"node_count"`
}

type node struct {
	Children []node `json:"children"`
}

func (n node) count() int {
	total := 1
	for _, child := range n.Children {
		total += child.count()
	}
	return total
}

// GetFile fetches file metadata and walks the document tree to count
// nodes.
func (c *Client) GetFile(ctx context.Context, accessToken, fileKey string) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/files/"+fileKey, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Figma-Token", accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("figma API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Name         string `json:"name"`
		LastModified string `json:"lastModified"`
		Document     node   `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &File{
		Name:         result.Name,
		LastModified: result.LastModified,
		NodeCount:    result.Document.count(),
	}, nil
}
