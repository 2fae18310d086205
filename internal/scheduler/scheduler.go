// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler runs the background sweeps of the publishing pipeline:
// a fixed-interval content sweep that publishes due posts, a second
// independent sweep that drains queued generation requests, and an hourly
// maintenance pass. The sweep interval is a coarse polling tick — the
// recurrence expressions on schedules decide when posts become due, not
// this package.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"autopress/internal/generation"
	"autopress/internal/models"
	"autopress/internal/publisher"
	"autopress/internal/store"
)

// Config holds the sweep cadences and bounds.
type Config struct {
	SweepInterval       time.Duration // content sweep tick
	GenerationInterval  time.Duration // generation-request sweep tick
	MaintenanceInterval time.Duration // reaper + connection verification
	BatchSize           int           // max posts/requests per tick
	ProcessingMaxAge    time.Duration // age after which stuck processing posts are failed
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.GenerationInterval <= 0 {
		c.GenerationInterval = 30 * time.Second
	}
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.ProcessingMaxAge <= 0 {
		c.ProcessingMaxAge = 2 * time.Hour
	}
	return c
}

// Service is the background sweep process. One goroutine owns all three
// timers, so batches never overlap and posts within a batch are processed
// one at a time in due-time order.
type Service struct {
	cfg        Config
	posts      *store.PostStore
	sites      *store.SiteStore
	gens       *store.GenerationStore
	exec       *publisher.Executor
	dispatcher generation.Dispatcher // nil disables the generation sweep
	leader     Leadership

	stop     chan struct{}
	done     sync.WaitGroup
	stopOnce sync.Once
}

// New creates the sweep service. A nil dispatcher disables the generation
// sweep; a nil leader defaults to AlwaysLeader.
func New(cfg Config, posts *store.PostStore, sites *store.SiteStore, gens *store.GenerationStore,
	exec *publisher.Executor, dispatcher generation.Dispatcher, leader Leadership) *Service {
	if leader == nil {
		leader = AlwaysLeader{}
	}
	return &Service{
		cfg:        cfg.withDefaults(),
		posts:      posts,
		sites:      sites,
		gens:       gens,
		exec:       exec,
		dispatcher: dispatcher,
		leader:     leader,
		stop:       make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Service) Start() {
	s.done.Add(1)
	go s.run()
	slog.Info("scheduler started",
		"sweep_interval", s.cfg.SweepInterval.String(),
		"generation_interval", s.cfg.GenerationInterval.String(),
		"batch_size", s.cfg.BatchSize,
	)
}

// Stop tears down the timers and waits for an in-flight tick to finish.
// A post already claimed into processing is not rolled back; the
// maintenance reaper picks it up if the process never returns.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.done.Wait()
	slog.Info("scheduler stopped")
}

func (s *Service) run() {
	defer s.done.Done()

	sweep := time.NewTicker(s.cfg.SweepInterval)
	defer sweep.Stop()
	gen := time.NewTicker(s.cfg.GenerationInterval)
	defer gen.Stop()
	maint := time.NewTicker(s.cfg.MaintenanceInterval)
	defer maint.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-sweep.C:
			s.SweepDuePosts(context.Background())
		case <-gen.C:
			s.SweepGenerationRequests(context.Background())
		case <-maint.C:
			s.RunMaintenance(context.Background())
		}
	}
}

// SweepDuePosts publishes every scheduled post whose time has arrived, up
// to the batch size, sequentially in due-time order. One post's failure
// never aborts the rest of the batch.
func (s *Service) SweepDuePosts(ctx context.Context) {
	if !s.leader.Acquire(ctx) {
		return
	}

	due, err := s.posts.ListDue(time.Now(), s.cfg.BatchSize)
	if err != nil {
		slog.Error("content sweep query failed", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	slog.Info("content sweep", "due", len(due))

	siteCache := make(map[uuid.UUID]*models.Site)
	for i := range due {
		post := &due[i]

		site, ok := siteCache[post.SiteID]
		if !ok {
			site, err = s.sites.FindByID(post.SiteID)
			if err != nil {
				slog.Error("content sweep site lookup failed", "site_id", post.SiteID, "error", err)
				continue
			}
			siteCache[post.SiteID] = site
		}
		if site == nil || !site.Publishable() {
			continue
		}

		s.publishOne(ctx, site, post)
	}
}

// publishOne runs a single attempt, translating sweep-level outcomes:
// a due post with empty content is failed rather than retried forever,
// and a site at its monthly cap keeps its posts scheduled.
func (s *Service) publishOne(ctx context.Context, site *models.Site, post *models.Post) {
	result, err := s.exec.Publish(ctx, site, post)
	switch {
	case err == nil:
		if result != nil && result.Status == models.PostStatusFailed {
			slog.Warn("sweep publish attempt failed", "post_id", post.ID, "site_id", site.ID)
		}
	case errors.Is(err, publisher.ErrLimitReached):
		slog.Info("sweep skipping post, monthly limit reached", "post_id", post.ID, "site_id", site.ID)
	case errors.Is(err, publisher.ErrEmptyContent):
		// The caller-facing publish rejects empty content without a state
		// change, but a due post with no content would be rediscovered on
		// every tick; fail it so an operator can retry after fixing it.
		claimed, cerr := s.posts.MarkProcessing(post.ID)
		if cerr != nil || claimed == nil {
			slog.Error("empty-content post claim failed", "post_id", post.ID, "error", cerr)
			return
		}
		if _, ferr := s.posts.MarkFailed(post.ID, publisher.ErrEmptyContent.Error()); ferr != nil {
			slog.Error("empty-content failure not recorded", "post_id", post.ID, "error", ferr)
			return
		}
		slog.Warn("sweep failed post with empty content", "post_id", post.ID)
	default:
		slog.Error("sweep publish error", "post_id", post.ID, "site_id", site.ID, "error", err)
	}
}

// SweepGenerationRequests claims pending generation requests and hands
// them to the collaborator, isolating failures per request.
func (s *Service) SweepGenerationRequests(ctx context.Context) {
	if s.dispatcher == nil {
		return
	}
	if !s.leader.Acquire(ctx) {
		return
	}

	pending, err := s.gens.ListPending(s.cfg.BatchSize)
	if err != nil {
		slog.Error("generation sweep query failed", "error", err)
		return
	}

	for i := range pending {
		req := &pending[i]

		claimed, err := s.gens.MarkProcessing(req.ID)
		if err != nil {
			slog.Error("generation claim failed", "request_id", req.ID, "error", err)
			continue
		}
		if claimed == nil {
			continue // already claimed elsewhere
		}

		if err := s.dispatcher.Dispatch(ctx, claimed); err != nil {
			slog.Warn("generation dispatch failed", "request_id", req.ID, "error", err)
			if ferr := s.gens.Fail(req.ID, err.Error()); ferr != nil {
				slog.Error("generation failure not recorded", "request_id", req.ID, "error", ferr)
			}
		}
	}
}

// RunMaintenance reaps posts stuck in processing and re-verifies the
// connection of every active site.
func (s *Service) RunMaintenance(ctx context.Context) {
	if !s.leader.Acquire(ctx) {
		return
	}

	reaped, err := s.posts.FailStaleProcessing(s.cfg.ProcessingMaxAge, time.Now())
	if err != nil {
		slog.Error("stale processing reap failed", "error", err)
	} else if reaped > 0 {
		slog.Warn("reaped stale processing posts", "count", reaped)
	}

	sites, err := s.sites.List()
	if err != nil {
		slog.Error("maintenance site list failed", "error", err)
		return
	}
	for i := range sites {
		site := &sites[i]
		if !site.IsActive {
			continue
		}
		if _, err := s.exec.VerifyConnection(ctx, site); err != nil {
			slog.Error("site connection status not recorded", "site_id", site.ID, "error", err)
		}
	}
}
