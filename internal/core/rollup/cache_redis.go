// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package rollup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/constants"
)

/*
RedisCache is a read-through rollup cache with per-caliber generations.

Every committed write bumps the caliber's generation counter; results are
keyed by generation, so an outdated entry is simply never read again and
expires through its TTL.

Keys:

	rollup:gen:{caliber}               generation counter
	rollup:{caliber}:{gen}:{root}      JSON-encoded [Result]
*/
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GenerationKey is the counter key of a caliber.
func GenerationKey(caliberCode string) string {
	return constants.RedisPrefixGeneration + caliberCode
}

// ResultKey is the key of one cached result.
func ResultKey(caliberCode string, generation int64, root string) string {
	return fmt.Sprintf("%s%s:%d:%s", constants.RedisPrefixRollup, caliberCode, generation, root)
}

// Lookup returns the cached result of the current generation, or nil on a miss.
func (cache *RedisCache) Lookup(ctx context.Context, caliberCode, root string) (*Result, int64, error) {
	generation, err := cache.client.Get(ctx, GenerationKey(caliberCode)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("rollup cache: read generation: %w", err)
	}

	payload, err := cache.client.Get(ctx, ResultKey(caliberCode, generation, root)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("rollup cache: read result: %w", err)
	}

	result := &Result{}
	if err := json.Unmarshal(payload, result); err != nil {
		return nil, 0, fmt.Errorf("rollup cache: decode result: %w", err)
	}
	result.reindex()
	return result, generation, nil
}

// Store saves result under generation.
func (cache *RedisCache) Store(ctx context.Context, caliberCode, root string, generation int64, result *Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("rollup cache: encode result: %w", err)
	}

	if err := cache.client.Set(ctx, ResultKey(caliberCode, generation, root), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("rollup cache: write result: %w", err)
	}
	return nil
}

// Invalidate bumps the caliber generation, orphaning every cached result of it.
func (cache *RedisCache) Invalidate(ctx context.Context, caliberCode string) error {
	if err := cache.client.Incr(ctx, GenerationKey(caliberCode)).Err(); err != nil {
		return fmt.Errorf("rollup cache: bump generation: %w", err)
	}
	return nil
}
