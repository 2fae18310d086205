// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"autopress/internal/models"
	"autopress/internal/publisher"
)

// postCreateRequest is the body for creating a post. A scheduled_at in the
// future moves the post straight into the scheduled state.
type postCreateRequest struct {
	Title               string     `json:"title"`
	Content             string     `json:"content"`
	Excerpt             *string    `json:"excerpt,omitempty"`
	Tags                *string    `json:"tags,omitempty"`
	Topic               *string    `json:"topic,omitempty"`
	GenerationRequestID *uuid.UUID `json:"generation_request_id,omitempty"`
	ScheduledAt         *time.Time `json:"scheduled_at,omitempty"`
}

// postPatchRequest is the body for editing a post's content fields.
type postPatchRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Excerpt *string `json:"excerpt,omitempty"`
	Tags    *string `json:"tags,omitempty"`
	Topic   *string `json:"topic,omitempty"`
}

// postScheduleRequest sets the instant a draft should go out.
type postScheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// PostsList returns a site's posts, optionally filtered by status.
func (a *API) PostsList(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}

	var status *models.PostStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := models.PostStatus(raw)
		if !st.Valid() {
			respondValidation(w, "unknown status "+raw)
			return
		}
		status = &st
	}

	posts, err := a.posts.ListBySite(site.ID, status)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	respondJSON(w, http.StatusOK, posts)
}

// PostGet returns a single post, scoped to the site.
func (a *API) PostGet(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	post, err := a.posts.FindByID(id, site.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if post == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// PostCreate creates a post as a draft, or scheduled when scheduled_at is
// supplied. Linking a generation request marks that request completed.
func (a *API) PostCreate(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}

	var req postCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "malformed request body: "+err.Error())
		return
	}

	if msg := validatePostTitle(req.Title); msg != "" {
		respondValidation(w, msg)
		return
	}
	if msg := validatePostExcerpt(req.Excerpt); msg != "" {
		respondValidation(w, msg)
		return
	}
	if msg := validateTopic(req.Topic); msg != "" {
		respondValidation(w, msg)
		return
	}
	if req.ScheduledAt != nil && !req.ScheduledAt.After(time.Now()) {
		respondValidation(w, "scheduled_at must be in the future")
		return
	}

	post := &models.Post{
		SiteID:              site.ID,
		Title:               req.Title,
		Content:             req.Content,
		Excerpt:             req.Excerpt,
		Tags:                req.Tags,
		Topic:               req.Topic,
		GenerationRequestID: req.GenerationRequestID,
	}

	created, err := a.posts.Create(post)
	if err != nil {
		respondInternal(w, err)
		return
	}

	if req.ScheduledAt != nil {
		scheduled, serr := a.posts.Schedule(created.ID, site.ID, *req.ScheduledAt)
		if serr != nil {
			respondInternal(w, serr)
			return
		}
		if scheduled != nil {
			created = scheduled
		}
	}

	if req.GenerationRequestID != nil {
		if cerr := a.gens.Complete(*req.GenerationRequestID, created.ID); cerr != nil {
			slog.Warn("generation request completion failed",
				"request_id", *req.GenerationRequestID, "error", cerr)
		}
	}

	respondJSON(w, http.StatusCreated, created)
}

// PostUpdate edits the content fields of a post. Lifecycle fields are only
// moved through the dedicated endpoints.
func (a *API) PostUpdate(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	post, err := a.posts.FindByID(id, site.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if post == nil {
		respondNotFound(w)
		return
	}

	var req postPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "malformed request body: "+err.Error())
		return
	}

	if req.Title != nil {
		if msg := validatePostTitle(*req.Title); msg != "" {
			respondValidation(w, msg)
			return
		}
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		if msg := validatePostExcerpt(req.Excerpt); msg != "" {
			respondValidation(w, msg)
			return
		}
		post.Excerpt = req.Excerpt
	}
	if req.Tags != nil {
		post.Tags = req.Tags
	}
	if req.Topic != nil {
		if msg := validateTopic(req.Topic); msg != "" {
			respondValidation(w, msg)
			return
		}
		post.Topic = req.Topic
	}

	updated, err := a.posts.Update(post)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if updated == nil {
		respondNotFound(w)
		return
	}

	// Published posts have a live remote copy; push the edit there so the
	// two do not diverge. A remote failure keeps the local edit and is
	// already logged by the executor.
	a.exec.SyncRemote(r.Context(), site, updated)

	respondJSON(w, http.StatusOK, updated)
}

// PostDelete removes a post locally and, when it was published, attempts
// to remove the remote copy as well.
func (a *API) PostDelete(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	post, err := a.posts.FindByID(id, site.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if post == nil {
		respondNotFound(w)
		return
	}

	deleted, err := a.exec.Delete(r.Context(), site, post)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if !deleted {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// PostPublish publishes a post immediately, bypassing its schedule.
func (a *API) PostPublish(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	post, err := a.posts.FindByID(id, site.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if post == nil {
		respondNotFound(w)
		return
	}

	result, err := a.exec.Publish(r.Context(), site, post)
	switch {
	case errors.Is(err, publisher.ErrEmptyContent),
		errors.Is(err, publisher.ErrLimitReached),
		errors.Is(err, models.ErrInvalidTransition):
		respondValidation(w, err.Error())
		return
	case err != nil:
		respondInternal(w, err)
		return
	case result == nil:
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PostSchedule moves a draft into the scheduled state for a future instant.
func (a *API) PostSchedule(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	var req postScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "malformed request body: "+err.Error())
		return
	}
	if !req.ScheduledAt.After(time.Now()) {
		respondValidation(w, "scheduled_at must be in the future")
		return
	}

	post, err := a.posts.Schedule(id, site.ID, req.ScheduledAt)
	if err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			respondValidation(w, err.Error())
			return
		}
		respondInternal(w, err)
		return
	}
	if post == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// PostRetry moves a failed post back to draft so it can be rescheduled.
func (a *API) PostRetry(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	post, err := a.posts.Retry(id, site.ID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			respondValidation(w, err.Error())
			return
		}
		respondInternal(w, err)
		return
	}
	if post == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// postStatsResponse reports the per-status post counts of a site. Every
// status appears, zero or not.
type postStatsResponse struct {
	Draft      int `json:"draft"`
	Scheduled  int `json:"scheduled"`
	Processing int `json:"processing"`
	Published  int `json:"published"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// PostStats returns the site's post counts by status.
func (a *API) PostStats(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}

	counts, err := a.posts.StatusCounts(site.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}

	stats := postStatsResponse{
		Draft:      counts[models.PostStatusDraft],
		Scheduled:  counts[models.PostStatusScheduled],
		Processing: counts[models.PostStatusProcessing],
		Published:  counts[models.PostStatusPublished],
		Failed:     counts[models.PostStatusFailed],
	}
	stats.Total = stats.Draft + stats.Scheduled + stats.Processing + stats.Published + stats.Failed
	respondJSON(w, http.StatusOK, stats)
}
