// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// limits.go provides a Valkey-backed cache for monthly-limit snapshots.
// The snapshot is advisory, so a short TTL is acceptable; a successful
// publish invalidates the site's entry to keep the count fresh.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// limitKeyPrefix is the Valkey key prefix for limit snapshots.
	limitKeyPrefix = "limits:"

	// DefaultLimitTTL is how long a limit snapshot stays cached.
	DefaultLimitTTL = time.Minute
)

// LimitCache stores per-site monthly-limit snapshots in Valkey. A nil
// LimitCache is valid and behaves as a permanent miss, so the limit guard
// works without Valkey configured.
type LimitCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLimitCache creates a limit snapshot cache backed by the given Valkey client.
func NewLimitCache(client *redis.Client, ttl time.Duration) *LimitCache {
	if ttl == 0 {
		ttl = DefaultLimitTTL
	}
	return &LimitCache{client: client, ttl: ttl}
}

// Get retrieves a cached snapshot into dest. Returns false on miss.
func (lc *LimitCache) Get(ctx context.Context, siteID string, dest any) bool {
	if lc == nil {
		return false
	}
	val, err := lc.client.Get(ctx, limitKeyPrefix+siteID).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("limit cache get error", "site_id", siteID, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		slog.Warn("limit cache decode error", "site_id", siteID, "error", err)
		return false
	}
	return true
}

// Set stores a snapshot for a site with the configured TTL.
func (lc *LimitCache) Set(ctx context.Context, siteID string, snapshot any) {
	if lc == nil {
		return
	}
	val, err := json.Marshal(snapshot)
	if err != nil {
		slog.Warn("limit cache encode error", "site_id", siteID, "error", err)
		return
	}
	if err := lc.client.Set(ctx, limitKeyPrefix+siteID, val, lc.ttl).Err(); err != nil {
		slog.Warn("limit cache set error", "site_id", siteID, "error", err)
	}
}

// Invalidate removes a site's snapshot, typically after a publish.
func (lc *LimitCache) Invalidate(ctx context.Context, siteID string) {
	if lc == nil {
		return
	}
	if err := lc.client.Del(ctx, limitKeyPrefix+siteID).Err(); err != nil {
		slog.Warn("limit cache invalidate error", "site_id", siteID, "error", err)
	}
}
