// services/social_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"campaign-sharing-system/models"
)

// ErrNoProfile: the acting user has no connected profile on the posting
// aggregator, so there is no access token to post with.
var ErrNoProfile = errors.New("no connected social profile for user")

// ErrSocialUnavailable: the posting aggregator could not be reached or
// rejected the request outright.
var ErrSocialUnavailable = errors.New("social posting service unavailable")

// SocialConfig carries the posting aggregator credentials. Built in main
// and passed in explicitly.
type SocialConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type SocialPosterClient struct {
	cfg    SocialConfig
	Client *http.Client
}

func NewSocialPosterClient(cfg SocialConfig) *SocialPosterClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &SocialPosterClient{
		cfg: cfg,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NetworkPost is one network's slot in the aggregator response. A non-empty
// ID means the post went through on that network.
type NetworkPost struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// ShareResult is the per-network outcome of a multi-network post. One typed
// slot per network in the closed set, not a string-keyed map.
type ShareResult struct {
	Facebook *NetworkPost `json:"facebook,omitempty"`
	Twitter  *NetworkPost `json:"twitter,omitempty"`
}

// Posted reports whether the post succeeded on the given network, and the
// network-assigned post ID when it did. An absent slot or a slot without an
// ID counts as failure for that network.
func (r *ShareResult) Posted(n models.SocialNetwork) (string, bool) {
	var slot *NetworkPost
	switch n {
	case models.NetworkFacebook:
		slot = r.Facebook
	case models.NetworkTwitter:
		slot = r.Twitter
	default:
		return "", false
	}
	if slot == nil || slot.ID == "" {
		return "", false
	}
	return slot.ID, true
}

// FailureReason explains why the post did not land on the given network.
func (r *ShareResult) FailureReason(n models.SocialNetwork) string {
	var slot *NetworkPost
	switch n {
	case models.NetworkFacebook:
		slot = r.Facebook
	case models.NetworkTwitter:
		slot = r.Twitter
	}
	if slot == nil {
		return "no response from network"
	}
	if slot.Error != "" {
		return slot.Error
	}
	return "post not confirmed"
}

// Post publishes body+link to every network in networks on behalf of the
// user holding accessToken. Individual network failures are reported in the
// result, not as an error; err is reserved for request-level failures.
func (c *SocialPosterClient) Post(ctx context.Context, accessToken string, networks []models.SocialNetwork, body, link string) (*ShareResult, error) {
	if accessToken == "" {
		return nil, ErrNoProfile
	}

	names := make([]string, 0, len(networks))
	for _, n := range networks {
		names = append(names, string(n))
	}

	payload := map[string]string{
		"access_token": accessToken,
		"services":     strings.Join(names, ","),
		"body":         body,
		"url":          link,
	}
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/types/news", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocialUnavailable, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrNoProfile, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrSocialUnavailable, resp.StatusCode, string(raw))
	}

	var result ShareResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: bad response body: %v", ErrSocialUnavailable, err)
	}

	return &result, nil
}
