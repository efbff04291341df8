// Package cache keeps public gallery pages in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/character-gallery/internal/domain"
)

const versionKey = "gallery:version"

// KV is the subset of the Redis client the cache uses.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// GalleryCache stores gallery pages under a version number. Invalidation
// bumps the version, so stale pages are never read again and expire on
// their own.
type GalleryCache struct {
	kv  KV
	ttl time.Duration
}

// NewGalleryCache builds a cache. A nil client or a zero TTL disables it.
func NewGalleryCache(kv KV, ttl time.Duration) *GalleryCache {
	return &GalleryCache{kv: kv, ttl: ttl}
}

func (c *GalleryCache) enabled() bool {
	return c != nil && c.kv != nil && c.ttl > 0
}

func (c *GalleryCache) version(ctx context.Context) (string, error) {
	v, err := c.kv.Get(ctx, versionKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return v, err
}

func pageKey(version string, limit, offset int) string {
	return fmt.Sprintf("gallery:v%s:%d:%d", version, limit, offset)
}

// Get returns a cached page. The bool is false on a miss.
func (c *GalleryCache) Get(ctx context.Context, limit, offset int) ([]domain.GalleryEntry, bool, error) {
	if !c.enabled() {
		return nil, false, nil
	}
	version, err := c.version(ctx)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.kv.Get(ctx, pageKey(version, limit, offset)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entries []domain.GalleryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// Set stores a page under the current version.
func (c *GalleryCache) Set(ctx context.Context, limit, offset int, entries []domain.GalleryEntry) error {
	if !c.enabled() {
		return nil
	}
	version, err := c.version(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, pageKey(version, limit, offset), raw, c.ttl).Err()
}

// Invalidate drops every cached page.
func (c *GalleryCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.kv.Incr(ctx, versionKey).Err()
}
