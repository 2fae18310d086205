// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"autopress/internal/models"
)

func TestWebhookDispatch(t *testing.T) {
	var got dispatchPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	req := &models.GenerationRequest{
		ID:     uuid.New(),
		SiteID: uuid.New(),
		Topic:  "autumn gardening tips",
		Status: models.GenerationProcessing,
	}

	d := NewWebhookDispatcher(srv.URL, 5*time.Second)
	if err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got.RequestID != req.ID.String() {
		t.Errorf("request id: got %q, want %q", got.RequestID, req.ID)
	}
	if got.Topic != "autumn gardening tips" {
		t.Errorf("topic: got %q", got.Topic)
	}
}

func TestWebhookDispatchRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewWebhookDispatcher(srv.URL, time.Second)
	req := &models.GenerationRequest{ID: uuid.New(), SiteID: uuid.New(), Topic: "t"}
	if err := d.Dispatch(context.Background(), req); err == nil {
		t.Error("expected error for 503 response")
	}
}
