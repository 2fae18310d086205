// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API of the publishing pipeline:
// schedule management, recurrence preview, limit snapshots, post lifecycle
// operations, and the generation-request queue.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"autopress/internal/models"
	"autopress/internal/publisher"
	"autopress/internal/store"
)

// API carries the dependencies of all JSON handlers.
type API struct {
	sites     *store.SiteStore
	schedules *store.ScheduleStore
	posts     *store.PostStore
	gens      *store.GenerationStore
	limits    *publisher.LimitGuard
	exec      *publisher.Executor
}

// New creates the API handler group.
func New(sites *store.SiteStore, schedules *store.ScheduleStore, posts *store.PostStore,
	gens *store.GenerationStore, limits *publisher.LimitGuard, exec *publisher.Executor) *API {
	return &API{
		sites:     sites,
		schedules: schedules,
		posts:     posts,
		gens:      gens,
		limits:    limits,
		exec:      exec,
	}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes v as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("response encode failed", "error", err)
		}
	}
}

// respondError writes a JSON error body with the given status.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondValidation rejects a request with 422 and the validation message.
func respondValidation(w http.ResponseWriter, msg string) {
	respondError(w, http.StatusUnprocessableEntity, msg)
}

// respondNotFound hides whether the entity exists at all.
func respondNotFound(w http.ResponseWriter) {
	respondError(w, http.StatusNotFound, "not found")
}

// respondInternal logs the cause and returns a generic failure.
func respondInternal(w http.ResponseWriter, err error) {
	slog.Error("internal error", "error", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON parses the request body into dest, rejecting malformed JSON.
func decodeJSON(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

// urlUUID parses a UUID path parameter. The second return is false when the
// value is missing or malformed.
func urlUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// siteFromRequest resolves the {siteID} path parameter to a site, writing
// a 404 response when it cannot. A malformed UUID is indistinguishable from
// an unknown site.
func (a *API) siteFromRequest(w http.ResponseWriter, r *http.Request) *models.Site {
	id, ok := urlUUID(r, "siteID")
	if !ok {
		respondNotFound(w)
		return nil
	}
	site, err := a.sites.FindByID(id)
	if err != nil {
		respondInternal(w, err)
		return nil
	}
	if site == nil {
		respondNotFound(w)
		return nil
	}
	return site
}
