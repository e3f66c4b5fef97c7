// Package notion is a minimal client for the Notion REST API, scoped to
// the calendar-database sync the dashboard needs.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	baseURL    = "https://api.notion.com"
	apiVersion = "2022-06-28"
)

var ErrUnauthorized = errors.New("notion rejected the API key")

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

// Event is one calendar row in the bound database.
type Event struct {
	PageID string `json:"page_id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// Database describes the bound database, enough for a connection test.
type Database struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TestConnection fetches the database metadata with the given key. It
// is the liveness check run before credentials are stored.
func (c *Client) TestConnection(ctx context.Context, apiKey, databaseID string) (*Database, error) {
	body, err := c.request(ctx, apiKey, "GET", "/v1/databases/"+databaseID, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		ID    string `json:"id"`
		Title []struct {
			PlainText string `json:"plain_text"`
		} `json:"title"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	database := &Database{ID: result.ID}
	if len(result.Title) > 0 {
		database.Title = result.Title[0].PlainText
	}
	return database, nil
}

// QueryEvents lists the database rows sorted by their Date property,
// earliest first.
func (c *Client) QueryEvents(ctx context.Context, apiKey, databaseID string) ([]Event, error) {
	payload := map[string]interface{}{
		"sorts": []map[string]string{
			{"property": "Date", "direction": "ascending"},
		},
	}
	body, err := c.request(ctx, apiKey, "POST", "/v1/databases/"+databaseID+"/query", payload)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []struct {
			ID         string `json:"id"`
			Properties struct {
				Name struct {
					Title []struct {
						PlainText string `json:"plain_text"`
					} `json:"title"`
				} `json:"Name"`
				Date struct {
					Date *struct {
						Start string `json:"start"`
					} `json:"date"`
				} `json:"Date"`
				Status struct {
					Select *struct {
						Name string `json:"name"`
					} `json:"select"`
				} `json:"Status"`
			} `json:"properties"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(result.Results))
	for _, page := range result.Results {
		event := Event{PageID: page.ID}
		if len(page.Properties.Name.Title) > 0 {
			event.Title = page.Properties.Name.Title[0].PlainText
		}
		if page.Properties.Date.Date != nil {
			event.Date = page.Properties.Date.Date.Start
		}
		if page.Properties.Status.Select != nil {
			event.Status = page.Properties.Status.Select.Name
		}
		events = append(events, event)
	}
	return events, nil
}

// CreateEvent appends a row to the bound database.
func (c *Client) CreateEvent(ctx context.Context, apiKey, databaseID string, event *Event) (string, error) {
	payload := map[string]interface{}{
		"parent": map[string]string{"database_id": databaseID},
		"properties": map[string]interface{}{
			"Name": map[string]interface{}{
				"title": []map[string]interface{}{
					{"text": map[string]string{"content": event.Title}},
				},
			},
			"Date": map[string]interface{}{
				"date": map[string]string{"start": event.Date},
			},
		},
	}
	if event.Status != "" {
		payload["properties"].(map[string]interface{})["Status"] = map[string]interface{}{
			"select": map[string]string{"name": event.Status},
		}
	}

	body, err := c.request(ctx, apiKey, "POST", "/v1/pages", payload)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

func (c *Client) request(ctx context.Context, apiKey, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notion API error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
