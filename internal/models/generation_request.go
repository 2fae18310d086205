// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationStatus tracks a queued content-generation request.
type GenerationStatus string

const (
	GenerationPending    GenerationStatus = "pending"
	GenerationProcessing GenerationStatus = "processing"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// GenerationRequest is a queued ask for the generation collaborator to
// produce a post. The sweep marks it processing before dispatch; the
// collaborator completes it by creating a Post and linking it back here.
type GenerationRequest struct {
	ID           uuid.UUID        `json:"id"`
	SiteID       uuid.UUID        `json:"site_id"`
	Topic        string           `json:"topic"`
	Status       GenerationStatus `json:"status"`
	PostID       *uuid.UUID       `json:"post_id,omitempty"`
	ErrorMessage *string          `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
