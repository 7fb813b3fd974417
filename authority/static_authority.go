// Package authority hosts authority-client adapters for the token core. The
// static client issues deterministic tokens for development and tests; real
// deployments plug in a client that speaks to their identity endpoint.
package authority

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

type StaticAuthorityConfig struct {
	TokenTTL    time.Duration
	RenewBefore time.Duration
	TenantID    string
	Now         func() time.Time
}

// StaticAuthority is an in-process core.AuthorityClient. Tokens are minted
// deterministically from the request inputs and the clock, cached results are
// replayed through the session cache handed in by the core, and silent
// acquisitions succeed only from cache.
type StaticAuthority struct {
	config StaticAuthorityConfig
	codec  core.JSONResultCodec

	mu            sync.Mutex
	redeemedCodes map[string]bool
}

func NewStaticAuthority(cfg StaticAuthorityConfig) *StaticAuthority {
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	renewBefore := cfg.RenewBefore
	if renewBefore <= 0 {
		renewBefore = 2 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &StaticAuthority{
		config: StaticAuthorityConfig{
			TokenTTL:    tokenTTL,
			RenewBefore: renewBefore,
			TenantID:    strings.TrimSpace(cfg.TenantID),
			Now:         now,
		},
		redeemedCodes: map[string]bool{},
	}
}

func (a *StaticAuthority) NewSession(_ context.Context, authority string, cache *core.SessionCache) (core.AuthoritySession, error) {
	if a == nil {
		return nil, fmt.Errorf("authority: static authority is nil")
	}
	if err := core.ValidateAuthority(authority); err != nil {
		return nil, err
	}
	return &staticSession{
		authority: strings.TrimSpace(authority),
		cache:     cache,
		client:    a,
	}, nil
}

type staticSession struct {
	authority string
	cache     *core.SessionCache
	client    *StaticAuthority

	closed bool
}

func (s *staticSession) AcquireByAuthorizationCode(_ context.Context, code string, redirectURI string, credential core.ClientCredential, resource string) (core.AuthenticationResult, error) {
	if err := s.usable(); err != nil {
		return core.AuthenticationResult{}, err
	}
	if strings.TrimSpace(code) == "" {
		return core.AuthenticationResult{}, fmt.Errorf("authority: authorization code is required")
	}
	if strings.TrimSpace(redirectURI) == "" {
		return core.AuthenticationResult{}, fmt.Errorf("authority: redirect uri is required")
	}
	if credential.Empty() {
		return core.AuthenticationResult{}, fmt.Errorf("authority: client credential is required")
	}
	if !s.client.redeemCode(code) {
		return core.AuthenticationResult{}, fmt.Errorf("authority: authorization code already redeemed")
	}
	return s.issue("ac", code+"|"+credential.ApplicationID, resource, ""), nil
}

func (s *staticSession) AcquireSilent(ctx context.Context, resource string, clientID string, user core.UserIdentifier) (core.AuthenticationResult, error) {
	if err := s.usable(); err != nil {
		return core.AuthenticationResult{}, err
	}
	if strings.TrimSpace(clientID) == "" {
		return core.AuthenticationResult{}, fmt.Errorf("authority: client id is required")
	}
	if err := user.Validate(); err != nil {
		return core.AuthenticationResult{}, err
	}
	cached, ok, err := s.replay(ctx)
	if err != nil {
		return core.AuthenticationResult{}, err
	}
	if !ok {
		return core.AuthenticationResult{}, core.ErrSilentAuthFailed
	}
	if !user.IsAny() && cached.UserObjectID != "" && cached.UserObjectID != user.ObjectID() {
		// Cached entry belongs to a different identity: a miss, not a fault.
		return core.AuthenticationResult{}, core.ErrSilentAuthFailed
	}
	return cached, nil
}

func (s *staticSession) AcquireWithClientCredential(ctx context.Context, resource string, credential core.ClientCredential) (core.AuthenticationResult, error) {
	if err := s.usable(); err != nil {
		return core.AuthenticationResult{}, err
	}
	if credential.Empty() {
		return core.AuthenticationResult{}, fmt.Errorf("authority: client credential is required")
	}
	if cached, ok, err := s.replay(ctx); err != nil {
		return core.AuthenticationResult{}, err
	} else if ok {
		return cached, nil
	}
	result := s.issue("app", credential.ApplicationID+"|"+credential.Secret(), resource, "")
	if err := s.store(ctx, result); err != nil {
		return core.AuthenticationResult{}, err
	}
	return result, nil
}

func (s *staticSession) AcquireWithUserAssertion(ctx context.Context, resource string, credential core.ClientCredential, assertion core.UserAssertion) (core.AuthenticationResult, error) {
	if err := s.usable(); err != nil {
		return core.AuthenticationResult{}, err
	}
	if credential.Empty() {
		return core.AuthenticationResult{}, fmt.Errorf("authority: client credential is required")
	}
	if assertion.Empty() {
		return core.AuthenticationResult{}, fmt.Errorf("authority: user assertion is required")
	}
	if assertion.AssertionType() != core.UserAssertionTypeJWTBearer {
		return core.AuthenticationResult{}, fmt.Errorf("authority: unsupported assertion type %q", assertion.AssertionType())
	}
	if cached, ok, err := s.replay(ctx); err != nil {
		return core.AuthenticationResult{}, err
	} else if ok {
		return cached, nil
	}
	result := s.issue("obo", credential.ApplicationID+"|"+assertion.Fingerprint(), resource, assertion.Fingerprint())
	if err := s.store(ctx, result); err != nil {
		return core.AuthenticationResult{}, err
	}
	return result, nil
}

func (s *staticSession) AuthorizationRequestURL(_ context.Context, resource string, clientID string, redirectURI string, user core.UserIdentifier, extraQuery string) (string, error) {
	if err := s.usable(); err != nil {
		return "", err
	}
	if strings.TrimSpace(clientID) == "" {
		return "", fmt.Errorf("authority: client id is required")
	}
	if strings.TrimSpace(redirectURI) == "" {
		return "", fmt.Errorf("authority: redirect uri is required")
	}
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", strings.TrimSpace(clientID))
	query.Set("resource", strings.TrimSpace(resource))
	query.Set("redirect_uri", strings.TrimSpace(redirectURI))
	if !user.IsAny() {
		query.Set("login_hint", user.ObjectID())
	}
	built := strings.TrimRight(s.authority, "/") + "/oauth2/authorize?" + query.Encode()
	if extra := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(extraQuery), "&")); extra != "" {
		built += "&" + extra
	}
	return built, nil
}

func (s *staticSession) Close() error {
	if s == nil {
		return nil
	}
	s.closed = true
	s.cache = nil
	return nil
}

func (s *staticSession) usable() error {
	if s == nil || s.client == nil {
		return fmt.Errorf("authority: session is nil")
	}
	if s.closed {
		return fmt.Errorf("authority: session is closed")
	}
	return nil
}

// replay looks for a still-fresh cached result under the session key. Stale
// entries are evicted so the next acquisition reissues.
func (s *staticSession) replay(ctx context.Context) (core.AuthenticationResult, bool, error) {
	if s.cache == nil || s.cache.Store == nil || s.cache.Key == "" {
		return core.AuthenticationResult{}, false, nil
	}
	payload, found, err := s.cache.Store.Get(ctx, s.cache.Key)
	if err != nil {
		return core.AuthenticationResult{}, false, fmt.Errorf("authority: cache read failed: %w", err)
	}
	if !found {
		return core.AuthenticationResult{}, false, nil
	}
	result, err := s.client.codec.Decode(payload)
	if err != nil {
		// Undecodable entries are dropped rather than surfaced.
		_ = s.cache.Store.Remove(ctx, s.cache.Key)
		return core.AuthenticationResult{}, false, nil
	}
	now := s.client.config.Now().UTC()
	if result.Expired(now.Add(s.client.config.RenewBefore)) {
		_ = s.cache.Store.Remove(ctx, s.cache.Key)
		return core.AuthenticationResult{}, false, nil
	}
	return result, true, nil
}

func (s *staticSession) store(ctx context.Context, result core.AuthenticationResult) error {
	if s.cache == nil || s.cache.Store == nil || s.cache.Key == "" {
		return nil
	}
	payload, err := s.client.codec.Encode(result)
	if err != nil {
		return fmt.Errorf("authority: cache encode failed: %w", err)
	}
	if err := s.cache.Store.Put(ctx, s.cache.Key, payload); err != nil {
		return fmt.Errorf("authority: cache write failed: %w", err)
	}
	return nil
}

func (s *staticSession) issue(grant string, seed string, resource string, userObjectID string) core.AuthenticationResult {
	now := s.client.config.Now().UTC()
	sum := sha256.Sum256([]byte(grant + "|" + s.authority + "|" + resource + "|" + seed + "|" + fmt.Sprintf("%d", now.UnixNano())))
	return core.AuthenticationResult{
		TokenType:    "Bearer",
		AccessToken:  "tok_" + grant + "_" + hex.EncodeToString(sum[:16]),
		ExpiresOn:    now.Add(s.client.config.TokenTTL),
		Resource:     strings.TrimSpace(resource),
		Authority:    s.authority,
		TenantID:     s.client.config.TenantID,
		UserObjectID: userObjectID,
		Metadata: map[string]any{
			"grant": grant,
		},
	}
}

func (a *StaticAuthority) redeemCode(code string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	code = strings.TrimSpace(code)
	if a.redeemedCodes[code] {
		return false
	}
	a.redeemedCodes[code] = true
	return true
}

var _ core.AuthorityClient = (*StaticAuthority)(nil)
var _ core.AuthoritySession = (*staticSession)(nil)
