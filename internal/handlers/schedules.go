// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"autopress/internal/models"
	"autopress/internal/recurrence"
	"autopress/internal/store"
)

// scheduleCreateRequest is the body for creating a schedule.
type scheduleCreateRequest struct {
	Frequency      models.Frequency `json:"frequency"`
	PreferredTime  models.TimeSlot  `json:"preferred_time"`
	SpecificTime   *string          `json:"specific_time,omitempty"`
	Timezone       string           `json:"timezone"`
	SkipHolidays   bool             `json:"skip_holidays"`
	MonthlyLimit   int              `json:"monthly_limit"`
	CronExpression string           `json:"cron_expression,omitempty"`
	IsActive       *bool            `json:"is_active,omitempty"`
}

// schedulePatchRequest is the body for updating a schedule. Only supplied
// fields change; the recurrence expression is regenerated when any
// cadence/time field changes and no explicit expression accompanies it.
type schedulePatchRequest struct {
	Frequency      *models.Frequency `json:"frequency,omitempty"`
	PreferredTime  *models.TimeSlot  `json:"preferred_time,omitempty"`
	SpecificTime   *string           `json:"specific_time,omitempty"`
	Timezone       *string           `json:"timezone,omitempty"`
	SkipHolidays   *bool             `json:"skip_holidays,omitempty"`
	MonthlyLimit   *int              `json:"monthly_limit,omitempty"`
	CronExpression *string           `json:"cron_expression,omitempty"`
}

// SchedulesList returns all schedules for a site.
func (a *API) SchedulesList(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}

	schedules, err := a.schedules.ListBySite(site.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	respondJSON(w, http.StatusOK, schedules)
}

// ScheduleGet returns a single schedule, scoped to the site.
func (a *API) ScheduleGet(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	sched, err := a.schedules.FindByID(id, site.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if sched == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, sched)
}

// ScheduleCreate creates a site's schedule. A second active schedule for
// the same site is rejected with 409.
func (a *API) ScheduleCreate(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}

	var req scheduleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "malformed request body: "+err.Error())
		return
	}

	if req.MonthlyLimit == 0 {
		req.MonthlyLimit = models.DefaultMonthlyLimit
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if msg := validateScheduleFields(req.Frequency, req.PreferredTime, req.Timezone, req.MonthlyLimit); msg != "" {
		respondValidation(w, msg)
		return
	}

	expr, msg := resolveExpression(req.Frequency, req.PreferredTime, req.SpecificTime, req.CronExpression)
	if msg != "" {
		respondValidation(w, msg)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	sched, err := a.schedules.Create(&models.Schedule{
		SiteID:         site.ID,
		Frequency:      req.Frequency,
		PreferredTime:  req.PreferredTime,
		SpecificTime:   req.SpecificTime,
		Timezone:       req.Timezone,
		SkipHolidays:   req.SkipHolidays,
		MonthlyLimit:   req.MonthlyLimit,
		CronExpression: expr,
		IsActive:       active,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sched)
}

// ScheduleUpdate applies a partial update. Cadence or time changes without
// an explicit expression regenerate the stored one.
func (a *API) ScheduleUpdate(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	sched, err := a.schedules.FindByID(id, site.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if sched == nil {
		respondNotFound(w)
		return
	}

	var req schedulePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "malformed request body: "+err.Error())
		return
	}

	timingChanged := false
	if req.Frequency != nil {
		sched.Frequency = *req.Frequency
		timingChanged = true
	}
	if req.PreferredTime != nil {
		sched.PreferredTime = *req.PreferredTime
		timingChanged = true
	}
	if req.SpecificTime != nil {
		sched.SpecificTime = req.SpecificTime
		timingChanged = true
	}
	if req.Timezone != nil {
		sched.Timezone = *req.Timezone
	}
	if req.SkipHolidays != nil {
		sched.SkipHolidays = *req.SkipHolidays
	}
	if req.MonthlyLimit != nil {
		sched.MonthlyLimit = *req.MonthlyLimit
	}

	if msg := validateScheduleFields(sched.Frequency, sched.PreferredTime, sched.Timezone, sched.MonthlyLimit); msg != "" {
		respondValidation(w, msg)
		return
	}

	switch {
	case req.CronExpression != nil && *req.CronExpression != "":
		if err := recurrence.Validate(*req.CronExpression); err != nil {
			respondValidation(w, err.Error())
			return
		}
		sched.CronExpression = *req.CronExpression
	case timingChanged && sched.Frequency != models.FrequencyCustom:
		expr, terr := recurrence.Translate(sched.Frequency, sched.PreferredTime, sched.SpecificTime)
		if terr != nil {
			respondValidation(w, terr.Error())
			return
		}
		sched.CronExpression = expr
	case timingChanged:
		// Custom cadence changed without a new expression: nothing to derive.
		respondValidation(w, "custom frequency requires an explicit cron expression")
		return
	}

	updated, err := a.schedules.Update(sched)
	if err != nil {
		respondInternal(w, err)
		return
	}
	if updated == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// scheduleToggleRequest is the body for flipping the active flag.
type scheduleToggleRequest struct {
	Active bool `json:"active"`
}

// ScheduleToggle flips the active flag without touching other fields.
func (a *API) ScheduleToggle(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	var req scheduleToggleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "malformed request body: "+err.Error())
		return
	}

	sched, err := a.schedules.Toggle(id, site.ID, req.Active)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondInternal(w, err)
		return
	}
	if sched == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, sched)
}

// ScheduleDelete removes a schedule. Already-published posts are untouched.
func (a *API) ScheduleDelete(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}
	id, ok := urlUUID(r, "id")
	if !ok {
		respondNotFound(w)
		return
	}

	deleted, err := a.schedules.Delete(id, site.ID)
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

// recurrenceValidateRequest asks for validation and a preview of upcoming
// occurrences of an arbitrary expression.
type recurrenceValidateRequest struct {
	Expression   string `json:"expression"`
	Timezone     string `json:"timezone,omitempty"`
	Count        int    `json:"count,omitempty"`
	SkipHolidays bool   `json:"skip_holidays,omitempty"`
}

type recurrenceValidateResponse struct {
	Valid           bool        `json:"valid"`
	Error           string      `json:"error,omitempty"`
	NextOccurrences []time.Time `json:"next_occurrences,omitempty"`
}

// RecurrenceValidate validates an expression and returns its next
// occurrences (bounded). Invalid expressions return 200 with valid=false
// so callers can surface the message inline.
func (a *API) RecurrenceValidate(w http.ResponseWriter, r *http.Request) {
	var req recurrenceValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "malformed request body: "+err.Error())
		return
	}

	loc := time.UTC
	if req.Timezone != "" {
		parsed, err := time.LoadLocation(req.Timezone)
		if err != nil {
			respondValidation(w, "unknown timezone "+req.Timezone)
			return
		}
		loc = parsed
	}
	if req.Count <= 0 {
		req.Count = 5
	}

	if err := recurrence.Validate(req.Expression); err != nil {
		respondJSON(w, http.StatusOK, recurrenceValidateResponse{Valid: false, Error: err.Error()})
		return
	}

	next, err := recurrence.Next(req.Expression, time.Now(), loc, req.Count, req.SkipHolidays)
	if err != nil {
		respondJSON(w, http.StatusOK, recurrenceValidateResponse{Valid: false, Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, recurrenceValidateResponse{Valid: true, NextOccurrences: next})
}

// LimitsGet returns the site's monthly-limit snapshot.
func (a *API) LimitsGet(w http.ResponseWriter, r *http.Request) {
	site := a.siteFromRequest(w, r)
	if site == nil {
		return
	}

	snapshot, err := a.limits.CheckMonthlyLimit(r.Context(), site.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}
