package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// Client talks to a mem0-compatible memory REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
}

func NewClient(logger *log.Logger, baseURL string, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

var _ Storage = (*Client)(nil)

type searchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

type searchResponse struct {
	Results []Snippet `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string, userID string, limit int) ([]Snippet, error) {
	var response searchResponse
	err := c.post(ctx, "/v1/memories/search/", searchRequest{
		Query:  query,
		UserID: userID,
		Limit:  limit,
	}, &response)
	if err != nil {
		return nil, errors.Wrap(err, "searching memories")
	}
	if len(response.Results) > limit {
		response.Results = response.Results[:limit]
	}
	return response.Results, nil
}

type addRequest struct {
	Messages []Message         `json:"messages"`
	UserID   string            `json:"user_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (c *Client) Add(ctx context.Context, messages []Message, userID string, metadata map[string]string) error {
	if err := c.post(ctx, "/v1/memories/", addRequest{
		Messages: messages,
		UserID:   userID,
		Metadata: metadata,
	}, nil); err != nil {
		return errors.Wrap(err, "adding memories")
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshaling request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling memory API")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("Error closing response body", "error", err)
		}
	}()

	if resp.StatusCode >= 400 {
		errorText, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("memory API error: %d %s\n%s", resp.StatusCode, resp.Status, errorText)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding memory API response")
	}
	return nil
}
