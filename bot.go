package partnercenterbot

import "github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"

type Config = core.Config

type CacheConfig = core.CacheConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type AuthorityClient = core.AuthorityClient
type AuthorityRegistry = core.AuthorityRegistry
type AuthoritySession = core.AuthoritySession
type TokenCache = core.TokenCache
type CredentialStore = core.CredentialStore
type CacheKeyStrategy = core.CacheKeyStrategy
type SecretProvider = core.SecretProvider
type MetricsRecorder = core.MetricsRecorder

type AuthenticationResult = core.AuthenticationResult
type ApplicationCredential = core.ApplicationCredential
type ClientCredential = core.ClientCredential
type SecureSecret = core.SecureSecret
type UserAssertion = core.UserAssertion
type UserIdentifier = core.UserIdentifier

type AuthorizationCodeRequest = core.AuthorizationCodeRequest
type SilentRequest = core.SilentRequest
type AppOnlyRequest = core.AppOnlyRequest
type OnBehalfOfRequest = core.OnBehalfOfRequest
type AuthorizationURLRequest = core.AuthorizationURLRequest

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithAuthorityClient   = core.WithAuthorityClient
	WithAuthorityRegistry = core.WithAuthorityRegistry
	WithTokenCache        = core.WithTokenCache
	WithCredentialStore   = core.WithCredentialStore
	WithCacheKeyStrategy  = core.WithCacheKeyStrategy
)

var (
	NewSecureSecret  = core.NewSecureSecret
	NewUserAssertion = core.NewUserAssertion
	AnyUser          = core.AnyUser
	UserWithObjectID = core.UserWithObjectID
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
