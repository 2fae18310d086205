// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PostStatus tracks a post through the publishing pipeline.
type PostStatus string

const (
	PostStatusDraft      PostStatus = "draft"
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusProcessing PostStatus = "processing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
)

// Valid reports whether s is a known post status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusScheduled, PostStatusProcessing,
		PostStatusPublished, PostStatusFailed:
		return true
	}
	return false
}

// ErrInvalidTransition is returned when a post is asked to move to a status
// the lifecycle does not permit from its current one.
var ErrInvalidTransition = errors.New("invalid post status transition")

// postTransitions is the full lifecycle. Published is terminal; failed is
// terminal until a caller-initiated retry moves it back to draft.
var postTransitions = map[PostStatus][]PostStatus{
	PostStatusDraft:      {PostStatusScheduled, PostStatusProcessing},
	PostStatusScheduled:  {PostStatusProcessing},
	PostStatusProcessing: {PostStatusPublished, PostStatusFailed},
	PostStatusFailed:     {PostStatusDraft},
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s PostStatus) CanTransitionTo(next PostStatus) bool {
	for _, allowed := range postTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Post is the unit the pipeline publishes. It belongs to one site, may have
// been originated by a topic/generation request, and once published carries
// the identifier the remote site assigned to it.
type Post struct {
	ID                  uuid.UUID  `json:"id"`
	SiteID              uuid.UUID  `json:"site_id"`
	Topic               *string    `json:"topic,omitempty"`
	GenerationRequestID *uuid.UUID `json:"generation_request_id,omitempty"`
	RemoteID            *int64     `json:"remote_id,omitempty"`
	Title               string     `json:"title"`
	Content             string     `json:"content"`
	Excerpt             *string    `json:"excerpt,omitempty"`
	Tags                *string    `json:"tags,omitempty"` // comma-separated
	Status              PostStatus `json:"status"`
	ScheduledAt         *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
	ErrorMessage        *string    `json:"error_message,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsPublished returns true if the post reached the remote site.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Due reports whether a scheduled post should be picked up by the sweep at
// the given instant.
func (p *Post) Due(now time.Time) bool {
	return p.Status == PostStatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now)
}
