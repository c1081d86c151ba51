package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// renderKeyPrefix is the Redis key prefix for cached page fragments.
	renderKeyPrefix = "render:"

	// DefaultRenderTTL is how long a rendered page stays cached. Entries
	// are invalidated on every commit anyway, the TTL only bounds the
	// lifetime of entries for templates nobody touches again.
	DefaultRenderTTL = 24 * time.Hour
)

// RenderCache stores rendered page HTML keyed by template, version and
// page slug. A nil RenderCache is safe to use and behaves as a cache
// that never hits.
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRenderCache(client *redis.Client, ttl time.Duration) *RenderCache {
	if ttl == 0 {
		ttl = DefaultRenderTTL
	}
	return &RenderCache{client: client, ttl: ttl}
}

// GetPage retrieves the cached HTML of one page. The second return
// value reports a hit.
func (c *RenderCache) GetPage(ctx context.Context, templateID, version, pageSlug string) (string, bool, error) {
	if c == nil || c.client == nil {
		return "", false, nil
	}

	val, err := c.client.Get(ctx, pageKey(templateID, version, pageSlug)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("render cache get: %w", err)
	}
	return val, true, nil
}

// SetPage stores the rendered HTML of one page with the configured TTL.
func (c *RenderCache) SetPage(ctx context.Context, templateID, version, pageSlug, html string) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Set(ctx, pageKey(templateID, version, pageSlug), html, c.ttl).Err(); err != nil {
		return fmt.Errorf("render cache set: %w", err)
	}
	return nil
}

// InvalidateTemplate removes every cached page of a template across
// all versions by scanning for the template's key prefix.
func (c *RenderCache) InvalidateTemplate(ctx context.Context, templateID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	pattern := renderKeyPrefix + templateID + ":*"
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("render cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("render cache delete: %w", err)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

func (c *RenderCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func pageKey(templateID, version, pageSlug string) string {
	return fmt.Sprintf("%s%s:%s:%s", renderKeyPrefix, templateID, version, pageSlug)
}
