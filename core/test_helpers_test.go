package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// stubAuthorityClient records every session it opens, including whether the
// core handed it a session cache and with which key.
type stubAuthorityClient struct {
	mu       sync.Mutex
	sessions []*stubAuthoritySession

	newSessionErr error
	exchangeErr   error
	silentErr     error
	issued        AuthenticationResult
}

type stubAuthoritySession struct {
	client    *stubAuthorityClient
	authority string
	cache     *SessionCache

	closed       bool
	calls        []string
	seenSecret   string
	seenCode     string
	seenRedirect string
	seenQuery    string
}

func (c *stubAuthorityClient) NewSession(_ context.Context, authority string, cache *SessionCache) (AuthoritySession, error) {
	if c.newSessionErr != nil {
		return nil, c.newSessionErr
	}
	session := &stubAuthoritySession{client: c, authority: authority, cache: cache}
	c.mu.Lock()
	c.sessions = append(c.sessions, session)
	c.mu.Unlock()
	return session, nil
}

func (c *stubAuthorityClient) sessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *stubAuthorityClient) lastSession() *stubAuthoritySession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sessions) == 0 {
		return nil
	}
	return c.sessions[len(c.sessions)-1]
}

func (c *stubAuthorityClient) result(resource string) AuthenticationResult {
	issued := c.issued
	if issued.AccessToken == "" {
		issued = AuthenticationResult{
			TokenType:   "Bearer",
			AccessToken: "tok-123",
		}
	}
	issued.Resource = resource
	return issued
}

func (s *stubAuthoritySession) AcquireByAuthorizationCode(_ context.Context, code string, redirectURI string, credential ClientCredential, resource string) (AuthenticationResult, error) {
	s.calls = append(s.calls, "authorization_code")
	s.seenCode = code
	s.seenRedirect = redirectURI
	s.seenSecret = credential.Secret()
	if s.client.exchangeErr != nil {
		return AuthenticationResult{}, s.client.exchangeErr
	}
	return s.client.result(resource), nil
}

func (s *stubAuthoritySession) AcquireSilent(_ context.Context, resource string, clientID string, user UserIdentifier) (AuthenticationResult, error) {
	s.calls = append(s.calls, "silent")
	if s.client.silentErr != nil {
		return AuthenticationResult{}, s.client.silentErr
	}
	result := s.client.result(resource)
	result.UserObjectID = user.ObjectID()
	return result, nil
}

func (s *stubAuthoritySession) AcquireWithClientCredential(_ context.Context, resource string, credential ClientCredential) (AuthenticationResult, error) {
	s.calls = append(s.calls, "client_credential")
	s.seenSecret = credential.Secret()
	if s.client.exchangeErr != nil {
		return AuthenticationResult{}, s.client.exchangeErr
	}
	return s.client.result(resource), nil
}

func (s *stubAuthoritySession) AcquireWithUserAssertion(_ context.Context, resource string, credential ClientCredential, assertion UserAssertion) (AuthenticationResult, error) {
	s.calls = append(s.calls, "user_assertion")
	s.seenSecret = credential.Secret()
	if assertion.Empty() {
		return AuthenticationResult{}, fmt.Errorf("stub: assertion is required")
	}
	if s.client.exchangeErr != nil {
		return AuthenticationResult{}, s.client.exchangeErr
	}
	return s.client.result(resource), nil
}

func (s *stubAuthoritySession) AuthorizationRequestURL(_ context.Context, resource string, clientID string, redirectURI string, _ UserIdentifier, extraQuery string) (string, error) {
	s.calls = append(s.calls, "authorization_url")
	s.seenRedirect = redirectURI
	s.seenQuery = extraQuery
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", clientID)
	query.Set("resource", resource)
	query.Set("redirect_uri", redirectURI)
	built := strings.TrimRight(s.authority, "/") + "/oauth2/authorize?" + query.Encode()
	if extraQuery != "" {
		built += "&" + strings.TrimPrefix(extraQuery, "&")
	}
	return built, nil
}

func (s *stubAuthoritySession) Close() error {
	s.closed = true
	return nil
}

// memoryTestCache is a minimal in-process TokenCache for service tests.
type memoryTestCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	puts    int
}

func newMemoryTestCache() *memoryTestCache {
	return &memoryTestCache{entries: map[string][]byte{}}
}

func (c *memoryTestCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	payload, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

func (c *memoryTestCache) Put(_ context.Context, key string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[key] = append([]byte(nil), payload...)
	return nil
}

func (c *memoryTestCache) Remove(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type staticCredentialStore struct {
	credentials map[string]ApplicationCredential
}

func (s staticCredentialStore) GetApplicationCredential(_ context.Context, applicationID string) (ApplicationCredential, error) {
	credential, ok := s.credentials[applicationID]
	if !ok {
		return ApplicationCredential{}, ErrCredentialNotFound
	}
	return credential, nil
}

func newTestService(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, options ...Option) (*Service, *stubAuthorityClient) {
	t.Helper()
	client := &stubAuthorityClient{}
	svc, err := NewService(Config{}, append([]Option{WithAuthorityClient(client)}, options...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, client
}

func testCredential(useCache bool) ApplicationCredential {
	return ApplicationCredential{
		ApplicationID:     "app-1",
		ApplicationSecret: NewSecureSecret("s3cr3t-value"),
		UseCache:          useCache,
	}
}
