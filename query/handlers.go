package query

import (
	"context"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

// CredentialReader is satisfied by any credential store, including the
// SQL-backed one.
type CredentialReader interface {
	GetApplicationCredential(ctx context.Context, applicationID string) (core.ApplicationCredential, error)
}

type GetApplicationCredentialQuery struct {
	reader CredentialReader
}

func NewGetApplicationCredentialQuery(reader CredentialReader) *GetApplicationCredentialQuery {
	return &GetApplicationCredentialQuery{reader: reader}
}

func (q *GetApplicationCredentialQuery) Query(ctx context.Context, msg GetApplicationCredentialMessage) (core.ApplicationCredential, error) {
	if q == nil || q.reader == nil {
		return core.ApplicationCredential{}, queryDependencyError("query: credential reader is required")
	}
	return q.reader.GetApplicationCredential(ctx, msg.ApplicationID)
}

// CachedTokenView is the read-side answer for a cache peek. Found is false on
// a miss; Result is only meaningful when Found is true.
type CachedTokenView struct {
	Found  bool
	Key    string
	Result core.AuthenticationResult
}

type PeekCachedTokenQuery struct {
	cache    core.TokenCache
	strategy core.CacheKeyStrategy
	codec    core.ResultCodec
}

func NewPeekCachedTokenQuery(cache core.TokenCache, strategy core.CacheKeyStrategy, codec core.ResultCodec) *PeekCachedTokenQuery {
	if codec == nil {
		codec = core.JSONResultCodec{}
	}
	return &PeekCachedTokenQuery{cache: cache, strategy: strategy, codec: codec}
}

func (q *PeekCachedTokenQuery) Query(ctx context.Context, msg PeekCachedTokenMessage) (CachedTokenView, error) {
	if q == nil || q.cache == nil || q.strategy == nil {
		return CachedTokenView{}, queryDependencyError("query: token cache and key strategy are required")
	}

	key, err := q.strategy.Key(msg.Flow, msg.Authority, msg.Resource, msg.Principal)
	if err != nil {
		return CachedTokenView{}, err
	}

	payload, found, err := q.cache.Get(ctx, key)
	if err != nil {
		return CachedTokenView{}, err
	}
	if !found {
		return CachedTokenView{Key: key}, nil
	}

	result, err := q.codec.Decode(payload)
	if err != nil {
		// An undecodable entry reads as a miss; the write path will replace it.
		return CachedTokenView{Key: key}, nil
	}
	return CachedTokenView{Found: true, Key: key, Result: result}, nil
}
