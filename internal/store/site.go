// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all AutoPress
// entities. Each store struct wraps a *sql.DB and exposes typed query
// methods. Lookups return (nil, nil) when no row matches, so callers can
// translate absence into a NotFound response without leaking internals.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"autopress/internal/models"
)

// SiteStore handles all site-related database operations.
type SiteStore struct {
	db *sql.DB
}

// NewSiteStore creates a new SiteStore with the given database connection.
func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: db}
}

// List returns all sites ordered by creation date.
func (s *SiteStore) List() ([]models.Site, error) {
	rows, err := s.db.Query(`
		SELECT id, name, url, api_username, api_password, is_active,
		       connection_status, created_at, updated_at
		FROM sites ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		var site models.Site
		if err := rows.Scan(
			&site.ID, &site.Name, &site.URL, &site.APIUsername, &site.APIPassword,
			&site.IsActive, &site.ConnectionStatus, &site.CreatedAt, &site.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// FindByID retrieves a site by its UUID. Returns nil if not found.
func (s *SiteStore) FindByID(id uuid.UUID) (*models.Site, error) {
	site := &models.Site{}
	err := s.db.QueryRow(`
		SELECT id, name, url, api_username, api_password, is_active,
		       connection_status, created_at, updated_at
		FROM sites WHERE id = $1
	`, id).Scan(
		&site.ID, &site.Name, &site.URL, &site.APIUsername, &site.APIPassword,
		&site.IsActive, &site.ConnectionStatus, &site.CreatedAt, &site.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site by id: %w", err)
	}
	return site, nil
}

// Create inserts a new site and returns it with the generated ID.
func (s *SiteStore) Create(site *models.Site) (*models.Site, error) {
	if site.ConnectionStatus == "" {
		site.ConnectionStatus = models.ConnectionUnknown
	}

	result := &models.Site{}
	err := s.db.QueryRow(`
		INSERT INTO sites (name, url, api_username, api_password, is_active, connection_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, url, api_username, api_password, is_active,
		          connection_status, created_at, updated_at
	`, site.Name, site.URL, site.APIUsername, site.APIPassword,
		site.IsActive, site.ConnectionStatus,
	).Scan(
		&result.ID, &result.Name, &result.URL, &result.APIUsername, &result.APIPassword,
		&result.IsActive, &result.ConnectionStatus, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	return result, nil
}

// SetConnectionStatus records the outcome of the last remote API contact.
func (s *SiteStore) SetConnectionStatus(id uuid.UUID, status models.ConnectionStatus) error {
	_, err := s.db.Exec(`
		UPDATE sites SET connection_status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("set connection status: %w", err)
	}
	return nil
}

// Delete removes a site and, through cascading constraints, its schedules,
// posts and generation requests.
func (s *SiteStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	return nil
}
