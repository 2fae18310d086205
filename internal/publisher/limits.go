// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publisher executes single publish attempts against remote sites
// and guards the monthly volume cap. It owns the post lifecycle transitions
// between processing and its outcomes; deciding *when* a post runs is the
// scheduler's job.
package publisher

import (
	"context"
	"time"

	"github.com/google/uuid"

	"autopress/internal/cache"
	"autopress/internal/models"
	"autopress/internal/store"
)

// LimitSnapshot reports a site's publish volume for the current calendar
// month against its configured cap.
type LimitSnapshot struct {
	CurrentCount int  `json:"current_count"`
	Limit        int  `json:"limit"`
	CanPost      bool `json:"can_post"`
}

// LimitGuard computes monthly-limit snapshots. The check is advisory: it is
// read immediately before a publish attempt, not reserved ahead of time, so
// concurrent publishes can overshoot the cap by a small margin.
type LimitGuard struct {
	posts     *store.PostStore
	schedules *store.ScheduleStore
	snapshots *cache.LimitCache // may be nil
}

// NewLimitGuard creates a limit guard. The snapshot cache is optional.
func NewLimitGuard(posts *store.PostStore, schedules *store.ScheduleStore, snapshots *cache.LimitCache) *LimitGuard {
	return &LimitGuard{posts: posts, schedules: schedules, snapshots: snapshots}
}

// CheckMonthlyLimit counts the site's posts published in the current
// calendar month, evaluated in the timezone of the site's active schedule,
// and compares the count to the schedule's cap. Sites without an active
// schedule get the default cap.
func (g *LimitGuard) CheckMonthlyLimit(ctx context.Context, siteID uuid.UUID) (*LimitSnapshot, error) {
	cached := &LimitSnapshot{}
	if g.snapshots.Get(ctx, siteID.String(), cached) {
		return cached, nil
	}

	limit := models.DefaultMonthlyLimit
	loc := time.UTC
	sched, err := g.schedules.ActiveForSite(siteID)
	if err != nil {
		return nil, err
	}
	if sched != nil {
		limit = sched.MonthlyLimit
		loc = sched.Location()
	}

	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, 0)

	count, err := g.posts.CountPublishedBetween(siteID, from, to)
	if err != nil {
		return nil, err
	}

	snapshot := &LimitSnapshot{
		CurrentCount: count,
		Limit:        limit,
		CanPost:      count < limit,
	}
	g.snapshots.Set(ctx, siteID.String(), snapshot)
	return snapshot, nil
}

// InvalidateSnapshot drops the cached snapshot after a publish so the next
// check recounts.
func (g *LimitGuard) InvalidateSnapshot(ctx context.Context, siteID uuid.UUID) {
	g.snapshots.Invalidate(ctx, siteID.String())
}
