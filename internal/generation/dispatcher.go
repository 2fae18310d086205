// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generation is the boundary to the external content-generation
// collaborator. The scheduler drains queued generation requests and hands
// them to a Dispatcher; producing the content is entirely the
// collaborator's concern. It calls back only by creating posts with
// populated content, optionally linked to the request that originated them.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"autopress/internal/models"
)

// Dispatcher hands a claimed generation request to the collaborator.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *models.GenerationRequest) error
}

// dispatchPayload is the wire form a webhook receiver gets.
type dispatchPayload struct {
	RequestID string `json:"request_id"`
	SiteID    string `json:"site_id"`
	Topic     string `json:"topic"`
}

// WebhookDispatcher POSTs claimed requests to a configured webhook URL.
type WebhookDispatcher struct {
	url    string
	client *http.Client
}

// NewWebhookDispatcher creates a dispatcher targeting the given URL.
func NewWebhookDispatcher(url string, timeout time.Duration) *WebhookDispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WebhookDispatcher{url: url, client: &http.Client{Timeout: timeout}}
}

// Dispatch delivers the request to the webhook. A non-2xx response is a
// dispatch failure.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, req *models.GenerationRequest) error {
	payload, err := json.Marshal(dispatchPayload{
		RequestID: req.ID.String(),
		SiteID:    req.SiteID.String(),
		Topic:     req.Topic,
	})
	if err != nil {
		return fmt.Errorf("generation marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("generation http: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("generation webhook error (status %d)", resp.StatusCode)
	}
	return nil
}
