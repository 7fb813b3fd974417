// Package cache provides token-cache stores for the acquisition core: an
// in-process map store, a read-through layer over go-repository-cache, and an
// encrypting wrapper that keeps cached payloads ciphertext at rest.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

// MemoryTokenCache is a process-local core.TokenCache. It is the default
// store for single-instance deployments and the base store under the
// read-through layer in distributed ones.
type MemoryTokenCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{entries: map[string][]byte{}}
}

func (c *MemoryTokenCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c == nil {
		return nil, false, fmt.Errorf("cache: memory token cache is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, fmt.Errorf("cache: key is required")
	}
	c.mu.RLock()
	payload, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

func (c *MemoryTokenCache) Put(_ context.Context, key string, payload []byte) error {
	if c == nil {
		return fmt.Errorf("cache: memory token cache is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache: key is required")
	}
	if len(payload) == 0 {
		return fmt.Errorf("cache: payload is required")
	}
	c.mu.Lock()
	c.entries[key] = append([]byte(nil), payload...)
	c.mu.Unlock()
	return nil
}

func (c *MemoryTokenCache) Remove(_ context.Context, key string) error {
	if c == nil {
		return fmt.Errorf("cache: memory token cache is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache: key is required")
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len reports the number of live entries, for tests and diagnostics.
func (c *MemoryTokenCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ core.TokenCache = (*MemoryTokenCache)(nil)
