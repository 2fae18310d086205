// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Leadership gates sweep execution so that, when several process instances
// run, only one executes a given tick.
type Leadership interface {
	// Acquire reports whether this instance currently holds leadership.
	Acquire(ctx context.Context) bool
}

// AlwaysLeader is the single-instance deployment mode: every tick runs.
type AlwaysLeader struct{}

// Acquire always succeeds.
func (AlwaysLeader) Acquire(context.Context) bool { return true }

// ValkeyLease is a leadership token held in Valkey: a SETNX key with a TTL,
// renewed by the holder on every acquire. If the holder dies, the key
// expires and another instance takes over within one TTL.
type ValkeyLease struct {
	client *redis.Client
	key    string
	id     string
	ttl    time.Duration
}

// NewValkeyLease creates a lease with a per-process identity.
func NewValkeyLease(client *redis.Client, key string, ttl time.Duration) *ValkeyLease {
	if key == "" {
		key = "autopress:scheduler:leader"
	}
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &ValkeyLease{
		client: client,
		key:    key,
		id:     uuid.NewString(),
		ttl:    ttl,
	}
}

// Acquire takes or renews the lease. When Valkey is unreachable it fails
// closed: a multi-instance deployment must not run the same tick twice.
func (l *ValkeyLease) Acquire(ctx context.Context) bool {
	ok, err := l.client.SetNX(ctx, l.key, l.id, l.ttl).Result()
	if err != nil {
		slog.Warn("leadership lease unavailable", "error", err)
		return false
	}
	if ok {
		return true
	}

	holder, err := l.client.Get(ctx, l.key).Result()
	if err != nil {
		return false
	}
	if holder != l.id {
		return false
	}
	// Still the holder: push the expiry out.
	if err := l.client.Expire(ctx, l.key, l.ttl).Err(); err != nil {
		slog.Warn("leadership lease renew failed", "error", err)
	}
	return true
}
