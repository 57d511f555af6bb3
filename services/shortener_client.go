// services/shortener_client.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"campaign-sharing-system/utils"
)

// Shortener failure kinds. Callers dispatch on these with errors.Is instead
// of treating every failure the same way.
var (
	// ErrShortenerUnavailable: transport error or non-200 from the service.
	ErrShortenerUnavailable = errors.New("shortener unavailable")
	// ErrShortenerBadPayload: the service answered 200 but the expected
	// field was missing or unparseable.
	ErrShortenerBadPayload = errors.New("shortener returned unexpected payload")
)

// ShortenerConfig carries the URL-shortening service credentials. Built in
// main from the environment and passed in explicitly.
type ShortenerConfig struct {
	BaseURL string
	Login   string
	APIKey  string
	Timeout time.Duration
}

type ShortenerClient struct {
	cfg    ShortenerConfig
	Client *http.Client
}

// NewShortenerClient builds a client on the shared utils.HTTPClient. The
// same instance serves the request path and the background click sync, so
// the shared timeout is the default; set cfg.Timeout for a shorter one.
func NewShortenerClient(cfg ShortenerConfig) *ShortenerClient {
	client := utils.HTTPClient
	if cfg.Timeout != 0 {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &ShortenerClient{
		cfg:    cfg,
		Client: client,
	}
}

// Shorten asks the service for the short form of longURL.
func (c *ShortenerClient) Shorten(ctx context.Context, longURL string) (string, error) {
	q := url.Values{}
	q.Set("login", c.cfg.Login)
	q.Set("apiKey", c.cfg.APIKey)
	q.Set("longUrl", longURL)
	q.Set("format", "json")

	body, err := c.get(ctx, "/v3/shorten", q)
	if err != nil {
		return "", err
	}

	var out struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrShortenerBadPayload, err)
	}
	if out.Data.URL == "" {
		return "", fmt.Errorf("%w: missing url field", ErrShortenerBadPayload)
	}

	return out.Data.URL, nil
}

// Clicks returns the service's click count for an issued short URL.
func (c *ShortenerClient) Clicks(ctx context.Context, shortURL string) (int64, error) {
	q := url.Values{}
	q.Set("login", c.cfg.Login)
	q.Set("apiKey", c.cfg.APIKey)
	q.Set("link", shortURL)
	q.Set("format", "json")

	body, err := c.get(ctx, "/v3/link/clicks", q)
	if err != nil {
		return 0, err
	}

	var out struct {
		Data struct {
			LinkClicks *int64 `json:"link_clicks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrShortenerBadPayload, err)
	}
	if out.Data.LinkClicks == nil {
		return 0, fmt.Errorf("%w: missing link_clicks field", ErrShortenerBadPayload)
	}

	return *out.Data.LinkClicks, nil
}

func (c *ShortenerClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortenerUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrShortenerUnavailable, resp.StatusCode, string(body))
	}

	return body, nil
}
