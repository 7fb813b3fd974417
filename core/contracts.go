package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// SessionCache pairs the externally-owned token cache store with the derived
// key for one authority session. The adapter intercepts acquisitions through
// it transparently; the core never reads or writes the cached bytes itself.
type SessionCache struct {
	Store TokenCache
	Key   string
}

// TokenCache is the distributed cache store contract. Implementations must
// be safe for concurrent use; payloads are opaque to the core.
type TokenCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
	Remove(ctx context.Context, key string) error
}

// AuthorityClient opens transient sessions against an identity authority. A
// nil cache means the session must bypass caching entirely.
type AuthorityClient interface {
	NewSession(ctx context.Context, authority string, cache *SessionCache) (AuthoritySession, error)
}

// AuthoritySession is one short-lived authority exchange context. Sessions
// are created per call, used for exactly one request/response exchange, and
// closed on every exit path.
type AuthoritySession interface {
	AcquireByAuthorizationCode(ctx context.Context, code string, redirectURI string, credential ClientCredential, resource string) (AuthenticationResult, error)
	AcquireSilent(ctx context.Context, resource string, clientID string, user UserIdentifier) (AuthenticationResult, error)
	AcquireWithClientCredential(ctx context.Context, resource string, credential ClientCredential) (AuthenticationResult, error)
	AcquireWithUserAssertion(ctx context.Context, resource string, credential ClientCredential, assertion UserAssertion) (AuthenticationResult, error)
	AuthorizationRequestURL(ctx context.Context, resource string, clientID string, redirectURI string, user UserIdentifier, extraQuery string) (string, error)
	Close() error
}

// AuthorityRegistry routes authorities to clients by host, so sovereign
// cloud instances can use distinct authority endpoints.
type AuthorityRegistry interface {
	Register(host string, client AuthorityClient) error
	Resolve(authority string) (AuthorityClient, bool)
	Hosts() []string
}

// CredentialStore supplies application credential records. Read-only to the
// core.
type CredentialStore interface {
	GetApplicationCredential(ctx context.Context, applicationID string) (ApplicationCredential, error)
}

// CacheKeyStrategy derives the cache key for a (flow, authority, resource,
// principal) tuple. It must be injective over the practical input domain;
// the only tolerated collapse is the documented on-behalf-of principal
// omission.
type CacheKeyStrategy interface {
	Key(flow FlowTag, authority string, resource string, principal string) (string, error)
}

// SecretProvider encrypts opaque payloads before they reach external
// storage (the distributed cache, the credential table).
type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// AuthorizationCodeRequest exchanges a one-time authorization code. Never
// cached: each code is single-use.
type AuthorizationCodeRequest struct {
	Authority   string
	Code        string
	Credential  ApplicationCredential
	RedirectURI string
	Resource    string
}

// SilentRequest replays a previously-authenticated user from cache without
// interaction.
type SilentRequest struct {
	Authority string
	Resource  string
	ClientID  string
	User      UserIdentifier
}

// AppOnlyRequest acquires a token for the application itself
// (client-credentials flow).
type AppOnlyRequest struct {
	Authority  string
	Resource   string
	Credential ApplicationCredential
}

// OnBehalfOfRequest exchanges a user-held assertion for a token acting as
// that user. UserObjectID only participates in cache keying when
// user-scoped on-behalf-of keys are enabled.
type OnBehalfOfRequest struct {
	Authority    string
	Resource     string
	Credential   ApplicationCredential
	Assertion    UserAssertion
	UserObjectID string
}

// AuthorizationURLRequest builds the interactive-login redirect URL for a
// generic principal.
type AuthorizationURLRequest struct {
	Authority   string
	Resource    string
	ClientID    string
	RedirectURI string
	ExtraQuery  string
}

// TokenService is the exposed surface of the acquisition core.
type TokenService interface {
	AcquireByAuthorizationCode(ctx context.Context, req AuthorizationCodeRequest) (AuthenticationResult, error)
	AcquireSilent(ctx context.Context, req SilentRequest) (AuthenticationResult, error)
	AcquireAppOnly(ctx context.Context, req AppOnlyRequest) (AuthenticationResult, error)
	AcquireOnBehalfOf(ctx context.Context, req OnBehalfOfRequest) (AuthenticationResult, error)
	AuthorizationRequestURL(ctx context.Context, req AuthorizationURLRequest) (string, error)
}

// Job contracts decouple scheduled token warm-up from any one queue
// framework; adapters/gojob maps them onto go-job.

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
