// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"testing"
	"time"
)

func TestPostStatusValid(t *testing.T) {
	for _, s := range []PostStatus{
		PostStatusDraft, PostStatusScheduled, PostStatusProcessing,
		PostStatusPublished, PostStatusFailed,
	} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if PostStatus("archived").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestPostTransitions(t *testing.T) {
	tests := []struct {
		from, to PostStatus
		want     bool
	}{
		{PostStatusDraft, PostStatusScheduled, true},
		{PostStatusDraft, PostStatusProcessing, true},
		{PostStatusDraft, PostStatusPublished, false},
		{PostStatusDraft, PostStatusFailed, false},
		{PostStatusScheduled, PostStatusProcessing, true},
		{PostStatusScheduled, PostStatusPublished, false},
		{PostStatusScheduled, PostStatusDraft, false},
		{PostStatusProcessing, PostStatusPublished, true},
		{PostStatusProcessing, PostStatusFailed, true},
		{PostStatusProcessing, PostStatusDraft, false},
		{PostStatusPublished, PostStatusDraft, false},
		{PostStatusPublished, PostStatusFailed, false},
		{PostStatusFailed, PostStatusDraft, true},
		{PostStatusFailed, PostStatusScheduled, false},
		{PostStatusFailed, PostStatusProcessing, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPublishedIsTerminal(t *testing.T) {
	for _, to := range []PostStatus{
		PostStatusDraft, PostStatusScheduled, PostStatusProcessing, PostStatusFailed,
	} {
		if PostStatusPublished.CanTransitionTo(to) {
			t.Errorf("published -> %s should be forbidden", to)
		}
	}
}

func TestPostDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	duePost := Post{Status: PostStatusScheduled, ScheduledAt: &past}
	if !duePost.Due(now) {
		t.Error("past scheduled post should be due")
	}

	futurePost := Post{Status: PostStatusScheduled, ScheduledAt: &future}
	if futurePost.Due(now) {
		t.Error("future scheduled post should not be due")
	}

	draft := Post{Status: PostStatusDraft, ScheduledAt: &past}
	if draft.Due(now) {
		t.Error("draft should never be due")
	}

	noTime := Post{Status: PostStatusScheduled}
	if noTime.Due(now) {
		t.Error("scheduled post without a time should not be due")
	}
}
