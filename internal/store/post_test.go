// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"autopress/internal/models"
)

func newTestPost(t *testing.T, db *sql.DB, siteID uuid.UUID) *models.Post {
	t.Helper()
	posts := NewPostStore(db)
	post, err := posts.Create(&models.Post{
		SiteID:  siteID,
		Title:   "Test post " + uuid.NewString()[:8],
		Content: "## Heading\n\nBody text.",
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return post
}

func TestPostCreateDefaultsToDraft(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)

	post := newTestPost(t, db, site.ID)
	if post.Status != models.PostStatusDraft {
		t.Errorf("status = %q, want draft", post.Status)
	}
	if post.ScheduledAt != nil || post.PublishedAt != nil {
		t.Error("new draft carries lifecycle timestamps")
	}
}

func TestPostListBySiteStatusFilter(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	draft := newTestPost(t, db, site.ID)
	scheduled := newTestPost(t, db, site.ID)
	if _, err := posts.Schedule(scheduled.ID, site.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	status := models.PostStatusDraft
	drafts, err := posts.ListBySite(site.ID, &status)
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != draft.ID {
		t.Errorf("draft filter returned %d posts", len(drafts))
	}

	all, err := posts.ListBySite(site.ID, nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered list returned %d posts, want 2", len(all))
	}
}

func TestPostLifecycleHappyPath(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	post := newTestPost(t, db, site.ID)
	if _, err := posts.Schedule(post.ID, site.ID, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	processing, err := posts.MarkProcessing(post.ID)
	if err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	if processing.Status != models.PostStatusProcessing {
		t.Fatalf("status = %q, want processing", processing.Status)
	}

	publishedAt := time.Now().UTC().Truncate(time.Second)
	published, err := posts.MarkPublished(post.ID, 4217, publishedAt)
	if err != nil {
		t.Fatalf("mark published: %v", err)
	}
	if published.Status != models.PostStatusPublished {
		t.Fatalf("status = %q, want published", published.Status)
	}
	if published.RemoteID == nil || *published.RemoteID != 4217 {
		t.Error("remote ID not recorded")
	}
	if published.PublishedAt == nil {
		t.Error("published_at not recorded")
	}
	if published.ScheduledAt != nil {
		t.Error("scheduled_at not cleared on publish")
	}
}

func TestPostDraftCannotBePublishedDirectly(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	post := newTestPost(t, db, site.ID)
	_, err := posts.MarkPublished(post.ID, 1, time.Now())
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("draft to published: err = %v, want ErrInvalidTransition", err)
	}
}

func TestPostFailureAndRetry(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	post := newTestPost(t, db, site.ID)
	if _, err := posts.MarkProcessing(post.ID); err != nil {
		t.Fatalf("mark processing: %v", err)
	}

	failed, err := posts.MarkFailed(post.ID, "wordpress API error (status 500): boom")
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if failed.Status != models.PostStatusFailed {
		t.Fatalf("status = %q, want failed", failed.Status)
	}
	if failed.ErrorMessage == nil || *failed.ErrorMessage == "" {
		t.Error("failure message not recorded")
	}

	retried, err := posts.Retry(post.ID, site.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retried.Status != models.PostStatusDraft {
		t.Fatalf("status = %q, want draft after retry", retried.Status)
	}
	if retried.ErrorMessage != nil {
		t.Error("error message not cleared on retry")
	}
	if retried.ScheduledAt != nil {
		t.Error("scheduled_at not cleared on retry")
	}
}

func TestPostRetryOnlyFromFailed(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	post := newTestPost(t, db, site.ID)
	_, err := posts.Retry(post.ID, site.ID)
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("retry on draft: err = %v, want ErrInvalidTransition", err)
	}
}

func TestPostListDueRespectsSiteState(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	post := newTestPost(t, db, site.ID)
	past := time.Now().Add(-time.Minute)
	if _, err := db.Exec(
		`UPDATE posts SET status = 'scheduled', scheduled_at = $2 WHERE id = $1`,
		post.ID, past,
	); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	// Unverified site: the due query skips it.
	due, err := posts.ListDue(time.Now(), 100)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	for _, p := range due {
		if p.ID == post.ID {
			t.Fatal("post due despite unverified site connection")
		}
	}

	connectSite(t, db, site)

	due, err = posts.ListDue(time.Now(), 100)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	found := false
	for _, p := range due {
		if p.ID == post.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("due post missing from sweep query")
	}
}

func TestPostStatusCounts(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	newTestPost(t, db, site.ID)
	scheduled := newTestPost(t, db, site.ID)
	if _, err := posts.Schedule(scheduled.ID, site.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	counts, err := posts.StatusCounts(site.ID)
	if err != nil {
		t.Fatalf("status counts: %v", err)
	}
	if counts[models.PostStatusDraft] != 1 {
		t.Errorf("draft count = %d, want 1", counts[models.PostStatusDraft])
	}
	if counts[models.PostStatusScheduled] != 1 {
		t.Errorf("scheduled count = %d, want 1", counts[models.PostStatusScheduled])
	}
	if counts[models.PostStatusPublished] != 0 {
		t.Errorf("published count = %d, want 0", counts[models.PostStatusPublished])
	}
}

func TestPostCountPublishedBetween(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	post := newTestPost(t, db, site.ID)
	if _, err := posts.MarkProcessing(post.ID); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	now := time.Now().UTC()
	if _, err := posts.MarkPublished(post.ID, 7, now); err != nil {
		t.Fatalf("mark published: %v", err)
	}

	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	count, err := posts.CountPublishedBetween(site.ID, from, to)
	if err != nil {
		t.Fatalf("count published: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	prevCount, err := posts.CountPublishedBetween(site.ID, from.AddDate(0, -1, 0), from)
	if err != nil {
		t.Fatalf("count previous month: %v", err)
	}
	if prevCount != 0 {
		t.Errorf("previous month count = %d, want 0", prevCount)
	}
}

func TestPostFailStaleProcessing(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	post := newTestPost(t, db, site.ID)
	if _, err := posts.MarkProcessing(post.ID); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	// Backdate the claim so the reaper sees it as stuck.
	if _, err := db.Exec(
		`UPDATE posts SET updated_at = now() - interval '3 hours' WHERE id = $1`,
		post.ID,
	); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	reaped, err := posts.FailStaleProcessing(2*time.Hour, time.Now())
	if err != nil {
		t.Fatalf("reap: %v", err)
	}
	if reaped < 1 {
		t.Fatalf("reaped = %d, want at least 1", reaped)
	}

	found, err := posts.FindByID(post.ID, site.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Status != models.PostStatusFailed {
		t.Errorf("status = %q, want failed after reap", found.Status)
	}
}

func TestPostUpdateEditsContentOnly(t *testing.T) {
	db := testDB(t)
	site := testSite(t, db)
	posts := NewPostStore(db)

	post := newTestPost(t, db, site.ID)
	post.Title = "Edited title"
	post.Content = "Edited body."
	excerpt := "Short summary."
	post.Excerpt = &excerpt

	updated, err := posts.Update(post)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Edited title" || updated.Content != "Edited body." {
		t.Errorf("content edit not applied: %+v", updated)
	}
	if updated.Status != models.PostStatusDraft {
		t.Errorf("status changed by content edit: %q", updated.Status)
	}
}

func TestPostCrossSiteIsInvisible(t *testing.T) {
	db := testDB(t)
	siteA := testSite(t, db)
	siteB := testSite(t, db)
	posts := NewPostStore(db)

	post := newTestPost(t, db, siteA.ID)

	found, err := posts.FindByID(post.ID, siteB.ID)
	if err != nil {
		t.Fatalf("cross-site find: %v", err)
	}
	if found != nil {
		t.Error("post visible through another site")
	}

	deleted, err := posts.Delete(post.ID, siteB.ID)
	if err != nil {
		t.Fatalf("cross-site delete: %v", err)
	}
	if deleted {
		t.Error("post deletable through another site")
	}
}
