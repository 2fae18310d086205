// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"autopress/internal/markdown"
	"autopress/internal/models"
	"autopress/internal/store"
	"autopress/internal/wordpress"
)

// ErrEmptyContent rejects a publish attempt before any state change: a post
// with no content never enters processing.
var ErrEmptyContent = errors.New("post content is empty")

// ErrLimitReached signals that the site's monthly cap is exhausted. The
// post is left untouched so a later sweep can pick it up once the limit
// resets.
var ErrLimitReached = errors.New("monthly publish limit reached")

// Executor performs one publish attempt for one post and records the
// resulting lifecycle transition. It never decides whether a post should
// run now.
type Executor struct {
	posts  *store.PostStore
	sites  *store.SiteStore
	limits *LimitGuard
	client *wordpress.Client
}

// NewExecutor creates an executor with its dependencies.
func NewExecutor(posts *store.PostStore, sites *store.SiteStore, limits *LimitGuard, client *wordpress.Client) *Executor {
	return &Executor{posts: posts, sites: sites, limits: limits, client: client}
}

// Publish runs a single publish attempt for the post against its site.
//
// Validation failures (empty content, exhausted limit, lifecycle violation)
// return an error with the post unchanged. Once the post is claimed into
// processing, a remote failure is translated into the failed state with the
// error captured verbatim, and the failed post is returned with a nil
// error: the attempt itself completed. Callers inspect the returned post's
// status for the outcome.
func (e *Executor) Publish(ctx context.Context, site *models.Site, post *models.Post) (*models.Post, error) {
	if strings.TrimSpace(post.Content) == "" {
		return nil, ErrEmptyContent
	}

	snapshot, err := e.limits.CheckMonthlyLimit(ctx, site.ID)
	if err != nil {
		return nil, fmt.Errorf("check monthly limit: %w", err)
	}
	if !snapshot.CanPost {
		return nil, fmt.Errorf("%w: %d/%d this month", ErrLimitReached, snapshot.CurrentCount, snapshot.Limit)
	}

	claimed, err := e.posts.MarkProcessing(post.ID)
	if err != nil {
		return nil, err
	}
	if claimed == nil {
		return nil, fmt.Errorf("post %s not found", post.ID)
	}

	html, err := markdown.ToHTML(claimed.Content)
	if err != nil {
		return e.fail(claimed, fmt.Errorf("render content: %w", err))
	}

	params := wordpress.PostParams{
		Title:   claimed.Title,
		Content: html,
		Status:  "publish",
	}
	if claimed.Excerpt != nil {
		params.Excerpt = *claimed.Excerpt
	}

	remote, err := e.client.CreatePost(ctx, site, params)
	if err != nil {
		return e.fail(claimed, err)
	}

	published, err := e.posts.MarkPublished(claimed.ID, remote.ID, time.Now())
	if err != nil {
		return nil, err
	}
	e.limits.InvalidateSnapshot(ctx, site.ID)

	slog.Info("post published",
		"post_id", published.ID,
		"site_id", site.ID,
		"remote_id", remote.ID,
	)
	return published, nil
}

// fail records the failed outcome with the triggering error's message.
func (e *Executor) fail(post *models.Post, cause error) (*models.Post, error) {
	failed, err := e.posts.MarkFailed(post.ID, cause.Error())
	if err != nil {
		return nil, err
	}
	slog.Warn("post publish failed",
		"post_id", post.ID,
		"site_id", post.SiteID,
		"error", cause,
	)
	return failed, nil
}

// SyncRemote pushes a published post's current local content to its remote
// copy so an edit does not leave the two diverged. Best-effort like Delete:
// a remote failure is logged and reported, but the local edit stands.
func (e *Executor) SyncRemote(ctx context.Context, site *models.Site, post *models.Post) error {
	if !post.IsPublished() || post.RemoteID == nil {
		return nil
	}

	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		return fmt.Errorf("render content: %w", err)
	}

	params := wordpress.PostParams{
		Title:   post.Title,
		Content: html,
		Status:  "publish",
	}
	if post.Excerpt != nil {
		params.Excerpt = *post.Excerpt
	}

	if _, err := e.client.UpdatePost(ctx, site, *post.RemoteID, params); err != nil {
		slog.Warn("remote post update failed, local edit kept",
			"post_id", post.ID,
			"remote_id", *post.RemoteID,
			"error", err,
		)
		return err
	}
	return nil
}

// Delete removes a post locally, best-effort deleting the remote copy
// first when one exists. A remote delete failure is logged but never
// blocks the local deletion.
func (e *Executor) Delete(ctx context.Context, site *models.Site, post *models.Post) (bool, error) {
	if post.RemoteID != nil {
		if err := e.client.DeletePost(ctx, site, *post.RemoteID); err != nil {
			slog.Warn("remote post delete failed, removing local copy anyway",
				"post_id", post.ID,
				"remote_id", *post.RemoteID,
				"error", err,
			)
		}
	}
	return e.posts.Delete(post.ID, site.ID)
}

// VerifyConnection contacts the site's API with its stored credentials and
// records the outcome on the site row, updating the passed site in place.
// A failed check is a normal outcome reflected in the returned status; the
// error return is reserved for persistence failures.
func (e *Executor) VerifyConnection(ctx context.Context, site *models.Site) (models.ConnectionStatus, error) {
	status := models.ConnectionConnected
	if checkErr := e.client.CheckConnection(ctx, site); checkErr != nil {
		status = models.ConnectionError
		slog.Warn("site connection check failed",
			"site_id", site.ID,
			"error", checkErr,
		)
	}
	if err := e.sites.SetConnectionStatus(site.ID, status); err != nil {
		return status, err
	}
	site.ConnectionStatus = status
	return status, nil
}
