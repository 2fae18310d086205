// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autopress/internal/models"
)

// PostStore handles all post-related database operations, including the
// lifecycle transitions. Transitions are single conditional updates keyed
// on the current status, so a post can only move along the paths the
// lifecycle permits regardless of interleaving.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, site_id, topic, generation_request_id, remote_id,
	title, content, excerpt, tags, status, scheduled_at, published_at,
	error_message, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }, p *models.Post) error {
	return row.Scan(
		&p.ID, &p.SiteID, &p.Topic, &p.GenerationRequestID, &p.RemoteID,
		&p.Title, &p.Content, &p.Excerpt, &p.Tags, &p.Status,
		&p.ScheduledAt, &p.PublishedAt, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
	)
}

// Create inserts a new post and returns it with the generated ID. Posts
// enter the pipeline as drafts unless created directly in scheduled status.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}

	result := &models.Post{}
	err := scanPost(s.db.QueryRow(`
		INSERT INTO posts (site_id, topic, generation_request_id, title, content,
		                   excerpt, tags, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns+`
	`, p.SiteID, p.Topic, p.GenerationRequestID, p.Title, p.Content,
		p.Excerpt, p.Tags, p.Status, p.ScheduledAt), result)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// FindByID retrieves a post scoped to a site. Returns nil if the post does
// not exist or belongs to a different site.
func (s *PostStore) FindByID(id, siteID uuid.UUID) (*models.Post, error) {
	p := &models.Post{}
	err := scanPost(s.db.QueryRow(`
		SELECT `+postColumns+` FROM posts WHERE id = $1 AND site_id = $2
	`, id, siteID), p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// ListBySite returns a site's posts, newest first, optionally filtered by status.
func (s *PostStore) ListBySite(siteID uuid.UUID, status *models.PostStatus) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE site_id = $1`
	args := []any{siteID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Update modifies a draft's editable fields, scoped to its site. Returns
// nil if no matching post exists.
func (s *PostStore) Update(p *models.Post) (*models.Post, error) {
	result := &models.Post{}
	err := scanPost(s.db.QueryRow(`
		UPDATE posts SET
			title = $1, content = $2, excerpt = $3, tags = $4, topic = $5,
			updated_at = NOW()
		WHERE id = $6 AND site_id = $7
		RETURNING `+postColumns+`
	`, p.Title, p.Content, p.Excerpt, p.Tags, p.Topic, p.ID, p.SiteID), result)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return result, nil
}

// Delete removes a post scoped to its site. Reports whether a row was
// actually removed.
func (s *PostStore) Delete(id, siteID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = $1 AND site_id = $2`, id, siteID)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post rows affected: %w", err)
	}
	return n > 0, nil
}

// ListDue returns scheduled posts whose time has arrived, restricted to
// active and connected sites, ordered by due time ascending, bounded by
// limit. This is the sweep's work query.
func (s *PostStore) ListDue(now time.Time, limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.site_id, p.topic, p.generation_request_id, p.remote_id,
		       p.title, p.content, p.excerpt, p.tags, p.status, p.scheduled_at,
		       p.published_at, p.error_message, p.created_at, p.updated_at
		FROM posts p
		JOIN sites s ON s.id = p.site_id
		WHERE p.status = 'scheduled'
		  AND p.scheduled_at <= $1
		  AND s.is_active
		  AND s.connection_status = 'connected'
		ORDER BY p.scheduled_at ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("scan due post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountPublishedBetween counts a site's posts published within [from, to).
// The caller computes the window in the site's timezone.
func (s *PostStore) CountPublishedBetween(siteID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM posts
		WHERE site_id = $1 AND status = 'published'
		  AND published_at >= $2 AND published_at < $3
	`, siteID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count published posts: %w", err)
	}
	return count, nil
}

// StatusCounts returns the number of posts per status for a site.
func (s *PostStore) StatusCounts(siteID uuid.UUID) (map[models.PostStatus]int, error) {
	rows, err := s.db.Query(`
		SELECT status, COUNT(*) FROM posts WHERE site_id = $1 GROUP BY status
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("post status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.PostStatus]int)
	for rows.Next() {
		var status models.PostStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// --- Lifecycle transitions ---
//
// Each transition is a single UPDATE conditioned on the current status, so
// concurrent claimers cannot move a post twice. When the update matches no
// row, the helpers distinguish "post does not exist" (nil, nil) from "post
// exists but the transition is not permitted" (models.ErrInvalidTransition).

// MarkProcessing claims a post for publishing: draft or scheduled becomes
// processing.
func (s *PostStore) MarkProcessing(id uuid.UUID) (*models.Post, error) {
	result := &models.Post{}
	err := scanPost(s.db.QueryRow(`
		UPDATE posts SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND status IN ('draft', 'scheduled')
		RETURNING `+postColumns+`
	`, id), result)
	if err == sql.ErrNoRows {
		return s.transitionFailure(id)
	}
	if err != nil {
		return nil, fmt.Errorf("mark post processing: %w", err)
	}
	return result, nil
}

// MarkPublished records a successful publish: processing becomes published,
// with the remote-assigned identifier and publish timestamp set and any
// previous error cleared.
func (s *PostStore) MarkPublished(id uuid.UUID, remoteID int64, publishedAt time.Time) (*models.Post, error) {
	result := &models.Post{}
	err := scanPost(s.db.QueryRow(`
		UPDATE posts SET status = 'published', remote_id = $1, published_at = $2,
		                 scheduled_at = NULL, error_message = NULL, updated_at = NOW()
		WHERE id = $3 AND status = 'processing'
		RETURNING `+postColumns+`
	`, remoteID, publishedAt, id), result)
	if err == sql.ErrNoRows {
		return s.transitionFailure(id)
	}
	if err != nil {
		return nil, fmt.Errorf("mark post published: %w", err)
	}
	return result, nil
}

// MarkFailed records a failed publish attempt: processing becomes failed,
// with the error captured verbatim.
func (s *PostStore) MarkFailed(id uuid.UUID, message string) (*models.Post, error) {
	result := &models.Post{}
	err := scanPost(s.db.QueryRow(`
		UPDATE posts SET status = 'failed', error_message = $1,
		                 scheduled_at = NULL, updated_at = NOW()
		WHERE id = $2 AND status = 'processing'
		RETURNING `+postColumns+`
	`, message, id), result)
	if err == sql.ErrNoRows {
		return s.transitionFailure(id)
	}
	if err != nil {
		return nil, fmt.Errorf("mark post failed: %w", err)
	}
	return result, nil
}

// Schedule moves a draft to scheduled with the given publish time. The
// caller validates that the time is strictly in the future.
func (s *PostStore) Schedule(id, siteID uuid.UUID, at time.Time) (*models.Post, error) {
	result := &models.Post{}
	err := scanPost(s.db.QueryRow(`
		UPDATE posts SET status = 'scheduled', scheduled_at = $1, updated_at = NOW()
		WHERE id = $2 AND site_id = $3 AND status = 'draft'
		RETURNING `+postColumns+`
	`, at, id, siteID), result)
	if err == sql.ErrNoRows {
		return s.scopedTransitionFailure(id, siteID)
	}
	if err != nil {
		return nil, fmt.Errorf("schedule post: %w", err)
	}
	return result, nil
}

// Retry resets a failed post back to draft, clearing the error and any
// stale scheduled time.
func (s *PostStore) Retry(id, siteID uuid.UUID) (*models.Post, error) {
	result := &models.Post{}
	err := scanPost(s.db.QueryRow(`
		UPDATE posts SET status = 'draft', error_message = NULL,
		                 scheduled_at = NULL, updated_at = NOW()
		WHERE id = $1 AND site_id = $2 AND status = 'failed'
		RETURNING `+postColumns+`
	`, id, siteID), result)
	if err == sql.ErrNoRows {
		return s.scopedTransitionFailure(id, siteID)
	}
	if err != nil {
		return nil, fmt.Errorf("retry post: %w", err)
	}
	return result, nil
}

// FailStaleProcessing marks posts stuck in processing longer than maxAge as
// failed, making them visible and retryable again. Returns how many posts
// were reaped.
func (s *PostStore) FailStaleProcessing(maxAge time.Duration, now time.Time) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE posts SET status = 'failed',
		                 error_message = 'publishing stalled: post was stuck in processing',
		                 scheduled_at = NULL, updated_at = NOW()
		WHERE status = 'processing' AND updated_at < $1
	`, now.Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("fail stale processing posts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("stale processing rows affected: %w", err)
	}
	return n, nil
}

// transitionFailure resolves a no-row conditional update into either
// not-found (nil, nil) or an invalid-transition error.
func (s *PostStore) transitionFailure(id uuid.UUID) (*models.Post, error) {
	var status models.PostStatus
	err := s.db.QueryRow(`SELECT status FROM posts WHERE id = $1`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("post status lookup: %w", err)
	}
	return nil, fmt.Errorf("post is %s: %w", status, models.ErrInvalidTransition)
}

func (s *PostStore) scopedTransitionFailure(id, siteID uuid.UUID) (*models.Post, error) {
	var status models.PostStatus
	err := s.db.QueryRow(`SELECT status FROM posts WHERE id = $1 AND site_id = $2`, id, siteID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("post status lookup: %w", err)
	}
	return nil, fmt.Errorf("post is %s: %w", status, models.ErrInvalidTransition)
}
