package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

// EncryptedTokenCache wraps another token store so payloads are ciphertext at
// rest. Callers see plaintext; the inner store never does.
type EncryptedTokenCache struct {
	inner   core.TokenCache
	secrets core.SecretProvider
}

func NewEncryptedTokenCache(inner core.TokenCache, secrets core.SecretProvider) (*EncryptedTokenCache, error) {
	if inner == nil {
		return nil, fmt.Errorf("cache: inner token store is required")
	}
	if secrets == nil {
		return nil, fmt.Errorf("cache: secret provider is required")
	}
	return &EncryptedTokenCache{inner: inner, secrets: secrets}, nil
}

func (c *EncryptedTokenCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.inner == nil || c.secrets == nil {
		return nil, false, fmt.Errorf("cache: encrypted token cache is not configured")
	}
	ciphertext, found, err := c.inner.Get(ctx, strings.TrimSpace(key))
	if err != nil || !found {
		return nil, false, err
	}
	plaintext, err := c.secrets.Decrypt(ctx, ciphertext)
	if err != nil {
		// An undecryptable entry is useless; drop it and report a miss so
		// the caller reissues instead of failing hard.
		_ = c.inner.Remove(ctx, strings.TrimSpace(key))
		return nil, false, nil
	}
	return plaintext, true, nil
}

func (c *EncryptedTokenCache) Put(ctx context.Context, key string, payload []byte) error {
	if c == nil || c.inner == nil || c.secrets == nil {
		return fmt.Errorf("cache: encrypted token cache is not configured")
	}
	if len(payload) == 0 {
		return fmt.Errorf("cache: payload is required")
	}
	ciphertext, err := c.secrets.Encrypt(ctx, payload)
	if err != nil {
		return fmt.Errorf("cache: payload encryption failed: %w", err)
	}
	return c.inner.Put(ctx, strings.TrimSpace(key), ciphertext)
}

func (c *EncryptedTokenCache) Remove(ctx context.Context, key string) error {
	if c == nil || c.inner == nil {
		return fmt.Errorf("cache: encrypted token cache is not configured")
	}
	return c.inner.Remove(ctx, strings.TrimSpace(key))
}

var _ core.TokenCache = (*EncryptedTokenCache)(nil)
