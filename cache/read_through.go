package cache

import (
	"context"
	"fmt"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

// ReadThroughTokenCache layers a shared cache service over a base token
// store. Reads go through the cache service and fall back to the base on a
// miss; writes and removals hit the base first, then invalidate the cached
// entry so the next read refetches.
type ReadThroughTokenCache struct {
	base  core.TokenCache
	cache repositorycache.CacheService
}

func NewReadThroughTokenCache(base core.TokenCache, cacheService repositorycache.CacheService) (*ReadThroughTokenCache, error) {
	if base == nil {
		return nil, fmt.Errorf("cache: base token store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("cache: cache service is required")
	}
	return &ReadThroughTokenCache{base: base, cache: cacheService}, nil
}

// cachedTokenEntry carries the miss marker through the cache service, which
// has no notion of "found" on its own.
type cachedTokenEntry struct {
	Payload []byte `json:"payload,omitempty"`
	Found   bool   `json:"found"`
}

func (c *ReadThroughTokenCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.base == nil || c.cache == nil {
		return nil, false, fmt.Errorf("cache: read-through token cache is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, fmt.Errorf("cache: key is required")
	}

	entry, err := repositorycache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (cachedTokenEntry, error) {
		payload, found, fetchErr := c.base.Get(ctx, key)
		if fetchErr != nil {
			return cachedTokenEntry{}, fetchErr
		}
		return cachedTokenEntry{
			Payload: append([]byte(nil), payload...),
			Found:   found,
		}, nil
	})
	if err != nil {
		return nil, false, err
	}
	if !entry.Found {
		return nil, false, nil
	}
	return append([]byte(nil), entry.Payload...), true, nil
}

func (c *ReadThroughTokenCache) Put(ctx context.Context, key string, payload []byte) error {
	if c == nil || c.base == nil || c.cache == nil {
		return fmt.Errorf("cache: read-through token cache is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache: key is required")
	}
	if err := c.base.Put(ctx, key, payload); err != nil {
		return err
	}
	return c.cache.Delete(ctx, key)
}

func (c *ReadThroughTokenCache) Remove(ctx context.Context, key string) error {
	if c == nil || c.base == nil || c.cache == nil {
		return fmt.Errorf("cache: read-through token cache is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache: key is required")
	}
	if err := c.base.Remove(ctx, key); err != nil {
		return err
	}
	return c.cache.Delete(ctx, key)
}

var _ core.TokenCache = (*ReadThroughTokenCache)(nil)
