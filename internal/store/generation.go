// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"autopress/internal/models"
)

// GenerationStore handles the queue of content-generation requests that the
// sweep drains and hands to the generation collaborator.
type GenerationStore struct {
	db *sql.DB
}

// NewGenerationStore creates a new GenerationStore with the given database connection.
func NewGenerationStore(db *sql.DB) *GenerationStore {
	return &GenerationStore{db: db}
}

const generationColumns = `id, site_id, topic, status, post_id, error_message, created_at, updated_at`

func scanGeneration(row interface{ Scan(...any) error }, g *models.GenerationRequest) error {
	return row.Scan(
		&g.ID, &g.SiteID, &g.Topic, &g.Status, &g.PostID,
		&g.ErrorMessage, &g.CreatedAt, &g.UpdatedAt,
	)
}

// Create enqueues a pending generation request for a site.
func (s *GenerationStore) Create(siteID uuid.UUID, topic string) (*models.GenerationRequest, error) {
	result := &models.GenerationRequest{}
	err := scanGeneration(s.db.QueryRow(`
		INSERT INTO generation_requests (site_id, topic, status)
		VALUES ($1, $2, 'pending')
		RETURNING `+generationColumns+`
	`, siteID, topic), result)
	if err != nil {
		return nil, fmt.Errorf("create generation request: %w", err)
	}
	return result, nil
}

// ListPending returns queued requests oldest first, bounded by limit.
func (s *GenerationStore) ListPending(limit int) ([]models.GenerationRequest, error) {
	rows, err := s.db.Query(`
		SELECT `+generationColumns+`
		FROM generation_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending generation requests: %w", err)
	}
	defer rows.Close()

	var reqs []models.GenerationRequest
	for rows.Next() {
		var g models.GenerationRequest
		if err := scanGeneration(rows, &g); err != nil {
			return nil, fmt.Errorf("scan generation request: %w", err)
		}
		reqs = append(reqs, g)
	}
	return reqs, rows.Err()
}

// MarkProcessing claims a pending request before dispatch. Returns nil if
// the request was already claimed or does not exist.
func (s *GenerationStore) MarkProcessing(id uuid.UUID) (*models.GenerationRequest, error) {
	result := &models.GenerationRequest{}
	err := scanGeneration(s.db.QueryRow(`
		UPDATE generation_requests SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+generationColumns+`
	`, id), result)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mark generation request processing: %w", err)
	}
	return result, nil
}

// Complete links the request to the post the collaborator created.
func (s *GenerationStore) Complete(id, postID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE generation_requests SET status = 'completed', post_id = $1, updated_at = NOW()
		WHERE id = $2
	`, postID, id)
	if err != nil {
		return fmt.Errorf("complete generation request: %w", err)
	}
	return nil
}

// Fail records a dispatch failure.
func (s *GenerationStore) Fail(id uuid.UUID, message string) error {
	_, err := s.db.Exec(`
		UPDATE generation_requests SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2
	`, message, id)
	if err != nil {
		return fmt.Errorf("fail generation request: %w", err)
	}
	return nil
}
