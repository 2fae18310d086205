// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"autopress/internal/models"
)

// siteCreateRequest is the body for registering a site.
type siteCreateRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	APIUsername string `json:"api_username"`
	APIPassword string `json:"api_password"`
}

// SitesList returns every registered site.
func (a *API) SitesList(w http.ResponseWriter, r *http.Request) {
	sites, err := a.sites.List()
	if err != nil {
		respondInternal(w, err)
		return
	}
	if sites == nil {
		sites = []models.Site{}
	}
	respondJSON(w, http.StatusOK, sites)
}

// SiteGet returns a single site.
func (a *API) SiteGet(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	respondJSON(w, http.StatusOK, site)
}

// SiteCreate registers a new site. The connection starts out unknown until
// verified.
func (a *API) SiteCreate(w http.ResponseWriter, r *http.Request) {
	var req siteCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "malformed request body: "+err.Error())
		return
	}

	if msg := validateSiteFields(req.Name, req.URL, req.APIUsername, req.APIPassword); msg != "" {
		respondValidation(w, msg)
		return
	}

	site, err := a.sites.Create(&models.Site{
		Name:        req.Name,
		URL:         strings.TrimRight(req.URL, "/"),
		APIUsername: req.APIUsername,
		APIPassword: req.APIPassword,
		IsActive:    true,
	})
	if err != nil {
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, site)
}

// SiteVerify checks the remote API credentials and records the result on
// the site. A failed check is a normal outcome: the response is 200 with
// the refreshed connection_status, not an error.
func (a *API) SiteVerify(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}

	if _, err := a.exec.VerifyConnection(r.Context(), site); err != nil {
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusOK, site)
}

// SiteDelete removes a site and everything that belongs to it.
func (a *API) SiteDelete(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}

	if err := a.sites.Delete(site.ID); err != nil {
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// validateSiteFields checks the site registration fields and returns a
// human-readable message, or "" when everything is fine.
func validateSiteFields(name, rawURL, username, password string) string {
	if strings.TrimSpace(name) == "" {
		return "name is required"
	}
	if len(name) > maxTitleLength {
		return fmt.Sprintf("name must be at most %d characters", maxTitleLength)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "url must be an absolute http or https URL"
	}
	if username == "" {
		return "api_username is required"
	}
	if password == "" {
		return "api_password is required"
	}
	return ""
}
