// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package wordpress is the HTTP client for the remote content API posts are
// published to (WordPress REST v2 shape). Each call authenticates with the
// site's own credentials (application passwords over basic auth) and is
// bounded by the client's per-call timeout.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autopress/internal/models"
)

// DefaultTimeout bounds a single remote call. The sweep processes posts
// sequentially, so this is also the longest one post may block a sweep pass.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a remote error response gets captured into
// a post's error message.
const maxErrorBody = 500

// Client talks to remote sites' content APIs. Safe for concurrent use.
type Client struct {
	http *http.Client
}

// New creates a client with the given per-call timeout. A zero timeout
// falls back to DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// PostParams is the external representation of a post being created or
// updated on the remote site.
type PostParams struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Status     string  `json:"status"`
	Excerpt    string  `json:"excerpt,omitempty"`
	Categories []int64 `json:"categories,omitempty"`
}

// RemotePost is the subset of the remote API's post representation the
// pipeline cares about.
type RemotePost struct {
	ID     int64  `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// CreatePost publishes a new post on the site and returns the remote
// representation, including the identifier the site assigned.
func (c *Client) CreatePost(ctx context.Context, site *models.Site, params PostParams) (*RemotePost, error) {
	return c.doPost(ctx, site, http.MethodPost, apiBase(site)+"/posts", params)
}

// UpdatePost updates an existing remote post by its remote identifier.
func (c *Client) UpdatePost(ctx context.Context, site *models.Site, remoteID int64, params PostParams) (*RemotePost, error) {
	return c.doPost(ctx, site, http.MethodPost, fmt.Sprintf("%s/posts/%d", apiBase(site), remoteID), params)
}

// GetPost fetches a remote post by its remote identifier.
func (c *Client) GetPost(ctx context.Context, site *models.Site, remoteID int64) (*RemotePost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/posts/%d", apiBase(site), remoteID), nil)
	if err != nil {
		return nil, fmt.Errorf("wordpress request: %w", err)
	}
	return c.do(site, req)
}

// DeletePost removes a remote post permanently (force=true skips the
// remote trash).
func (c *Client) DeletePost(ctx context.Context, site *models.Site, remoteID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/posts/%d?force=true", apiBase(site), remoteID), nil)
	if err != nil {
		return fmt.Errorf("wordpress request: %w", err)
	}
	_, err = c.do(site, req)
	return err
}

// CheckConnection verifies the site's credentials by fetching the
// authenticated user. Used to maintain the site's connection status.
func (c *Client) CheckConnection(ctx context.Context, site *models.Site) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase(site)+"/users/me", nil)
	if err != nil {
		return fmt.Errorf("wordpress request: %w", err)
	}

	req.SetBasicAuth(site.APIUsername, site.APIPassword)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wordpress http: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wordpress API error (status %d)", resp.StatusCode)
	}
	return nil
}

func (c *Client) doPost(ctx context.Context, site *models.Site, method, url string, params PostParams) (*RemotePost, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("wordpress marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("wordpress request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(site, req)
}

func (c *Client) do(site *models.Site, req *http.Request) (*RemotePost, error) {
	req.SetBasicAuth(site.APIUsername, site.APIPassword)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordpress http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wordpress read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := string(respBody)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, fmt.Errorf("wordpress API error (status %d): %s", resp.StatusCode, body)
	}

	var result RemotePost
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("wordpress unmarshal: %w", err)
	}
	return &result, nil
}

// apiBase builds the REST v2 root for a site URL.
func apiBase(site *models.Site) string {
	return strings.TrimRight(site.URL, "/") + "/wp-json/wp/v2"
}
