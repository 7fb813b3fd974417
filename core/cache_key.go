package core

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultCacheKeyPrefix versions the key namespace. Bump the version segment
// when the layout changes so stale entries are abandoned, not misread.
const DefaultCacheKeyPrefix = "partner-center-bot::token::v1"

// EscapedKeyStrategy derives cache keys by joining URL-path-escaped segments
// with "::": <prefix>::<flow>::<authority>::<resource>[::<principal>].
// Escaping keeps the derivation injective: no input can smuggle a separator
// into a neighboring segment, so distinct (flow, authority, resource,
// principal) tuples never collapse to one key.
type EscapedKeyStrategy struct {
	Prefix string
}

func (s EscapedKeyStrategy) Key(flow FlowTag, authority string, resource string, principal string) (string, error) {
	if err := flow.Validate(); err != nil {
		return "", err
	}
	authority, err := normalizeCacheAuthority(authority)
	if err != nil {
		return "", err
	}
	resource = strings.TrimRight(strings.TrimSpace(resource), "/")
	if resource == "" {
		return "", fmt.Errorf("core: cache key resource is required")
	}

	prefix := strings.TrimSpace(s.Prefix)
	if prefix == "" {
		prefix = DefaultCacheKeyPrefix
	}

	segments := []string{string(flow), authority, resource}
	if principal = strings.TrimSpace(principal); principal != "" {
		segments = append(segments, principal)
	}
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(append([]string{prefix}, segments...), "::"), nil
}

// normalizeCacheAuthority lowercases the scheme and host of the authority so
// equivalent spellings of one endpoint share a partition; the path (tenant)
// is preserved as given apart from a trailing slash.
func normalizeCacheAuthority(authority string) (string, error) {
	if err := ValidateAuthority(authority); err != nil {
		return "", err
	}
	parsed, err := url.Parse(strings.TrimSpace(authority))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAuthority, err)
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	return strings.TrimRight(parsed.String(), "/"), nil
}

var _ CacheKeyStrategy = EscapedKeyStrategy{}
