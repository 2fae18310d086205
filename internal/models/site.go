// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the core entities of the AutoPress publishing
// pipeline: sites, schedules, posts, and generation requests.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus reflects the last known state of a site's remote
// content API connection.
type ConnectionStatus string

const (
	ConnectionConnected ConnectionStatus = "connected"
	ConnectionError     ConnectionStatus = "error"
	ConnectionUnknown   ConnectionStatus = "unknown"
)

// Site is a managed WordPress-style site that posts are published to.
// Credentials are site-specific and used as-is for the remote API's
// basic auth (application passwords).
type Site struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	URL              string           `json:"url"`
	APIUsername      string           `json:"api_username"`
	APIPassword      string           `json:"-"`
	IsActive         bool             `json:"is_active"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Publishable returns true if the sweep may publish to this site.
// Only active sites with a verified connection are considered.
func (s *Site) Publishable() bool {
	return s.IsActive && s.ConnectionStatus == ConnectionConnected
}
