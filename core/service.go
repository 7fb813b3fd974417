package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service is the token acquisition core. It validates inputs, derives cache
// keys, routes each call to the right authority client, and normalizes every
// failure into the token error taxonomy. Authority protocol details and cache
// replay live behind AuthorityClient; the service never parses tokens and
// never touches cached payload bytes.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	authorityClient AuthorityClient
	registry        AuthorityRegistry
	tokenCache      TokenCache
	credentialStore CredentialStore
	keyStrategy     CacheKeyStrategy
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	AuthorityClient AuthorityClient
	Registry        AuthorityRegistry
	TokenCache      TokenCache
	CredentialStore CredentialStore
	KeyStrategy     CacheKeyStrategy
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("token", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("token"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.authorityClient == nil && builder.registry == nil {
		return nil, mapBuildError(builder.errorMapper,
			fmt.Errorf("core: an authority client or registry is required"))
	}
	if builder.keyStrategy == nil {
		builder.keyStrategy = EscapedKeyStrategy{Prefix: finalConfig.Cache.KeyPrefix}
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		authorityClient: builder.authorityClient,
		registry:        builder.registry,
		tokenCache:      builder.tokenCache,
		credentialStore: builder.credentialStore,
		keyStrategy:     builder.keyStrategy,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorFactory:    s.errorFactory,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		AuthorityClient: s.authorityClient,
		Registry:        s.registry,
		TokenCache:      s.tokenCache,
		CredentialStore: s.credentialStore,
		KeyStrategy:     s.keyStrategy,
	}
}

// AcquireByAuthorizationCode redeems a one-time authorization code for a
// token. The exchange always goes to the authority; codes are single-use so
// the result is never served from cache.
func (s *Service) AcquireByAuthorizationCode(ctx context.Context, req AuthorizationCodeRequest) (result AuthenticationResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"flow":          string(FlowAuthorizationCode),
		"authority":     req.Authority,
		"resource":      req.Resource,
		"client_id":     req.Credential.ApplicationID,
		"cache_enabled": false,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "acquire_by_authorization_code", err, fields)
	}()

	if err = ValidateAuthority(req.Authority); err != nil {
		err = s.mapError(err)
		return AuthenticationResult{}, err
	}
	if strings.TrimSpace(req.Code) == "" {
		err = s.mapError(fmt.Errorf("core: authorization code is required"))
		return AuthenticationResult{}, err
	}
	if strings.TrimSpace(req.RedirectURI) == "" {
		err = s.mapError(fmt.Errorf("core: redirect uri is required"))
		return AuthenticationResult{}, err
	}
	if strings.TrimSpace(req.Resource) == "" {
		err = s.mapError(fmt.Errorf("core: resource is required"))
		return AuthenticationResult{}, err
	}
	wire, wireErr := req.Credential.Wire()
	if wireErr != nil {
		err = s.mapError(wireErr)
		return AuthenticationResult{}, err
	}
	defer wire.Clear()

	session, err := s.openSession(ctx, req.Authority, nil)
	if err != nil {
		return AuthenticationResult{}, err
	}
	defer session.Close()

	result, err = session.AcquireByAuthorizationCode(ctx, strings.TrimSpace(req.Code), strings.TrimSpace(req.RedirectURI), wire, strings.TrimSpace(req.Resource))
	if err != nil {
		err = s.mapError(markAuthorityError(err))
		return AuthenticationResult{}, err
	}
	return result, nil
}

// AcquireSilent replays a previously-authenticated user from the token cache
// without user interaction. A miss is the recoverable ErrSilentAuthFailed
// outcome; callers fall back to an interactive flow.
func (s *Service) AcquireSilent(ctx context.Context, req SilentRequest) (result AuthenticationResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"flow":      string(FlowSilent),
		"authority": req.Authority,
		"resource":  req.Resource,
		"client_id": req.ClientID,
		"user":      req.User.Discriminator(),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "acquire_silent", err, fields)
	}()

	if err = ValidateAuthority(req.Authority); err != nil {
		err = s.mapError(err)
		return AuthenticationResult{}, err
	}
	if strings.TrimSpace(req.Resource) == "" {
		err = s.mapError(fmt.Errorf("core: resource is required"))
		return AuthenticationResult{}, err
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		err = s.mapError(fmt.Errorf("core: client id is required"))
		return AuthenticationResult{}, err
	}
	if err = req.User.Validate(); err != nil {
		err = s.mapError(err)
		return AuthenticationResult{}, err
	}

	principal := clientID + "/" + req.User.Discriminator()
	sessionCache, cacheErr := s.sessionCacheFor(FlowSilent, req.Authority, req.Resource, principal)
	if cacheErr != nil {
		err = s.mapError(cacheErr)
		return AuthenticationResult{}, err
	}
	fields["cache_enabled"] = sessionCache != nil

	session, err := s.openSession(ctx, req.Authority, sessionCache)
	if err != nil {
		return AuthenticationResult{}, err
	}
	defer session.Close()

	result, err = session.AcquireSilent(ctx, strings.TrimSpace(req.Resource), clientID, req.User)
	if err != nil {
		err = s.mapError(markAuthorityError(err))
		return AuthenticationResult{}, err
	}
	return result, nil
}

// AcquireAppOnly obtains a token for the application itself via the
// client-credentials grant. Caching follows the credential's UseCache flag.
func (s *Service) AcquireAppOnly(ctx context.Context, req AppOnlyRequest) (result AuthenticationResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"flow":          string(FlowAppOnly),
		"authority":     req.Authority,
		"resource":      req.Resource,
		"client_id":     req.Credential.ApplicationID,
		"cache_enabled": req.Credential.UseCache,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "acquire_app_only", err, fields)
	}()

	if err = ValidateAuthority(req.Authority); err != nil {
		err = s.mapError(err)
		return AuthenticationResult{}, err
	}
	if strings.TrimSpace(req.Resource) == "" {
		err = s.mapError(fmt.Errorf("core: resource is required"))
		return AuthenticationResult{}, err
	}
	wire, wireErr := req.Credential.Wire()
	if wireErr != nil {
		err = s.mapError(wireErr)
		return AuthenticationResult{}, err
	}
	defer wire.Clear()

	// The app-only key carries no principal segment: every credential of an
	// (authority, resource) pair shares one entry.
	var sessionCache *SessionCache
	if req.Credential.UseCache {
		sessionCache, err = s.sessionCacheFor(FlowAppOnly, req.Authority, req.Resource, "")
		if err != nil {
			err = s.mapError(err)
			return AuthenticationResult{}, err
		}
	}

	session, err := s.openSession(ctx, req.Authority, sessionCache)
	if err != nil {
		return AuthenticationResult{}, err
	}
	defer session.Close()

	result, err = session.AcquireWithClientCredential(ctx, strings.TrimSpace(req.Resource), wire)
	if err != nil {
		err = s.mapError(markAuthorityError(err))
		return AuthenticationResult{}, err
	}
	return result, nil
}

// AcquireOnBehalfOf exchanges a user assertion for a token acting as that
// user. By default the cache key omits the user, matching the reference
// key layout where every delegated user of an (authority, resource) pair
// shares one entry; cache.user_scoped_on_behalf_of turns the per-user
// partition on.
func (s *Service) AcquireOnBehalfOf(ctx context.Context, req OnBehalfOfRequest) (result AuthenticationResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"flow":          string(FlowOnBehalfOf),
		"authority":     req.Authority,
		"resource":      req.Resource,
		"client_id":     req.Credential.ApplicationID,
		"cache_enabled": req.Credential.UseCache,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "acquire_on_behalf_of", err, fields)
	}()

	if err = ValidateAuthority(req.Authority); err != nil {
		err = s.mapError(err)
		return AuthenticationResult{}, err
	}
	if strings.TrimSpace(req.Resource) == "" {
		err = s.mapError(fmt.Errorf("core: resource is required"))
		return AuthenticationResult{}, err
	}
	if req.Assertion.Empty() {
		err = s.mapError(fmt.Errorf("core: user assertion is required"))
		return AuthenticationResult{}, err
	}
	wire, wireErr := req.Credential.Wire()
	if wireErr != nil {
		err = s.mapError(wireErr)
		return AuthenticationResult{}, err
	}
	defer wire.Clear()

	var sessionCache *SessionCache
	if req.Credential.UseCache {
		sessionCache, err = s.sessionCacheFor(FlowOnBehalfOf, req.Authority, req.Resource, s.onBehalfOfPrincipal(req))
		if err != nil {
			err = s.mapError(err)
			return AuthenticationResult{}, err
		}
	}

	session, err := s.openSession(ctx, req.Authority, sessionCache)
	if err != nil {
		return AuthenticationResult{}, err
	}
	defer session.Close()

	result, err = session.AcquireWithUserAssertion(ctx, strings.TrimSpace(req.Resource), wire, req.Assertion)
	if err != nil {
		err = s.mapError(markAuthorityError(err))
		return AuthenticationResult{}, err
	}
	return result, nil
}

// AuthorizationRequestURL builds the interactive sign-in URL for a generic
// principal. No token moves and nothing is cached.
func (s *Service) AuthorizationRequestURL(ctx context.Context, req AuthorizationURLRequest) (authURL string, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"flow":      string(FlowAuthorizationCode),
		"authority": req.Authority,
		"resource":  req.Resource,
		"client_id": req.ClientID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "authorization_request_url", err, fields)
	}()

	if err = ValidateAuthority(req.Authority); err != nil {
		err = s.mapError(err)
		return "", err
	}
	if strings.TrimSpace(req.Resource) == "" {
		err = s.mapError(fmt.Errorf("core: resource is required"))
		return "", err
	}
	if strings.TrimSpace(req.ClientID) == "" {
		err = s.mapError(fmt.Errorf("core: client id is required"))
		return "", err
	}
	if strings.TrimSpace(req.RedirectURI) == "" {
		err = s.mapError(fmt.Errorf("core: redirect uri is required"))
		return "", err
	}

	session, err := s.openSession(ctx, req.Authority, nil)
	if err != nil {
		return "", err
	}
	defer session.Close()

	authURL, err = session.AuthorizationRequestURL(ctx, strings.TrimSpace(req.Resource), strings.TrimSpace(req.ClientID), strings.TrimSpace(req.RedirectURI), AnyUser(), strings.TrimSpace(req.ExtraQuery))
	if err != nil {
		err = s.mapError(markAuthorityError(err))
		return "", err
	}
	return authURL, nil
}

// ResolveApplicationCredential loads the stored credential record for an
// application, so callers can feed acquisition requests from the credential
// store without handling secrets themselves.
func (s *Service) ResolveApplicationCredential(ctx context.Context, applicationID string) (credential ApplicationCredential, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"application_id": applicationID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "resolve_application_credential", err, fields)
	}()

	if strings.TrimSpace(applicationID) == "" {
		err = s.mapError(fmt.Errorf("core: application id is required"))
		return ApplicationCredential{}, err
	}
	if s == nil || s.credentialStore == nil {
		err = s.mapError(fmt.Errorf("core: credential store is not configured"))
		return ApplicationCredential{}, err
	}

	credential, err = s.credentialStore.GetApplicationCredential(ctx, strings.TrimSpace(applicationID))
	if err != nil {
		err = s.mapError(err)
		return ApplicationCredential{}, err
	}
	if err = credential.Validate(); err != nil {
		err = s.mapError(err)
		return ApplicationCredential{}, err
	}
	return credential, nil
}

func (s *Service) onBehalfOfPrincipal(req OnBehalfOfRequest) string {
	if s == nil || !s.config.Cache.UserScopedOnBehalfOf {
		return ""
	}
	if objectID := strings.TrimSpace(req.UserObjectID); objectID != "" {
		return objectID
	}
	return req.Assertion.Fingerprint()
}

// sessionCacheFor derives the key for one acquisition and pairs it with the
// configured store. A nil result means the session runs uncached, either
// because no store is configured or because the caller opted out.
func (s *Service) sessionCacheFor(flow FlowTag, authority string, resource string, principal string) (*SessionCache, error) {
	if s == nil || s.tokenCache == nil {
		return nil, nil
	}
	key, err := s.keyStrategy.Key(flow, authority, resource, principal)
	if err != nil {
		return nil, err
	}
	return &SessionCache{Store: s.tokenCache, Key: key}, nil
}

func (s *Service) resolveClient(authority string) (AuthorityClient, error) {
	if s == nil {
		return nil, fmt.Errorf("core: service is nil")
	}
	if s.registry != nil {
		if client, ok := s.registry.Resolve(authority); ok {
			return client, nil
		}
		if s.authorityClient == nil {
			host, _ := AuthorityHost(authority)
			return nil, fmt.Errorf("core: no authority client registered for host %q", host)
		}
	}
	if s.authorityClient == nil {
		return nil, fmt.Errorf("core: authority client is not configured")
	}
	return s.authorityClient, nil
}

func (s *Service) openSession(ctx context.Context, authority string, cache *SessionCache) (AuthoritySession, error) {
	client, err := s.resolveClient(authority)
	if err != nil {
		return nil, s.mapError(err)
	}
	session, err := client.NewSession(ctx, strings.TrimSpace(authority), cache)
	if err != nil {
		return nil, s.mapError(err)
	}
	if session == nil {
		return nil, s.mapError(fmt.Errorf("core: authority client returned a nil session"))
	}
	return session, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return defaultErrorMapper(err)
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
