// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forumvault/archiver/internal/platform/constants"
	"github.com/forumvault/archiver/internal/platform/dberr"
)

// cacheTTL bounds how long a perceptual hash stays in the lookup cache
// before lookups fall back to the bounded Postgres scan over archive.artifact.
const cacheTTL = 24 * time.Hour

// Cache is a write-through Redis index from perceptual hash to a
// caller-supplied value (the image gallery handler stores the matching
// artifact's content hash, or the hash itself on first sighting), sparing
// the worker a table scan on the common case where the same image has
// already been archived.
type Cache struct {
	client *redis.Client
}

// NewCache wraps an established Redis client for perceptual-hash lookups.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Lookup returns the value previously stored for hash, if any.
func (c *Cache) Lookup(ctx context.Context, hash string) (value string, found bool, err error) {
	val, err := c.client.Get(ctx, key(hash)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, dberr.Wrap(err, "dedup_cache_lookup")
	}
	return val, true, nil
}

// Store records that hash maps to value, refreshing the TTL.
func (c *Cache) Store(ctx context.Context, hash, value string) error {
	if err := c.client.Set(ctx, key(hash), value, cacheTTL).Err(); err != nil {
		return dberr.Wrap(err, "dedup_cache_store")
	}
	return nil
}

func key(hash string) string {
	return fmt.Sprintf("%s%s", constants.RedisPrefixPHash, hash)
}
