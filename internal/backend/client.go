package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"convsync/internal/conv"
)

// HTTPError is a non-2xx backend response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// conversationsResponse is the backend payload envelope.
type conversationsResponse struct {
	Conversations []*conv.RemoteConversation `json:"conversations"`
	HasMore       bool                       `json:"has_more"`
}

// Client fetches conversation metadata from the backend over HTTP.
type Client struct {
	baseURL   string
	http      *http.Client
	validator *Validator
	logger    *zap.Logger
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("backend base url: %w", err)
	}
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		validator: validator,
		logger:    logger,
	}, nil
}

// FetchConversations retrieves the full remote conversation set. The
// payload is validated against the wire schema before decoding.
func (c *Client) FetchConversations(ctx context.Context) ([]*conv.RemoteConversation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/conversations", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch conversations: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	conversations, err := c.decode(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched conversations",
		zap.Int("count", len(conversations)),
	)
	return conversations, nil
}

func (c *Client) decode(body []byte) ([]*conv.RemoteConversation, error) {
	if err := c.validator.Validate(body); err != nil {
		return nil, err
	}
	var envelope conversationsResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	return envelope.Conversations, nil
}
