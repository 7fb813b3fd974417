package partnercenterbot

import (
	"fmt"

	botcommand "github.com/Perf-Org-5KRepos/Partner-Center-Bot/command"
	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
	botquery "github.com/Perf-Org-5KRepos/Partner-Center-Bot/query"
)

// AcquiringService is the surface the facade fronts; *core.Service satisfies
// it.
type AcquiringService = botcommand.AcquiringService

// Commands exposes ready-to-register command wrappers for each acquisition
// operation.
type Commands struct {
	AcquireAuthorizationCode *botcommand.AcquireAuthorizationCodeCommand
	AcquireSilent            *botcommand.AcquireSilentCommand
	AcquireAppOnly           *botcommand.AcquireAppOnlyCommand
	AcquireOnBehalfOf        *botcommand.AcquireOnBehalfOfCommand
	AuthorizationURL         *botcommand.AuthorizationURLCommand
}

// Queries exposes the read side. Entries are nil when the service carries no
// backing dependency for them.
type Queries struct {
	GetApplicationCredential *botquery.GetApplicationCredentialQuery
	PeekCachedToken          *botquery.PeekCachedTokenQuery
}

type Facade struct {
	service  AcquiringService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	credentialReader botquery.CredentialReader
	tokenCache       core.TokenCache
	keyStrategy      core.CacheKeyStrategy
}

func WithCredentialReader(reader botquery.CredentialReader) FacadeOption {
	return func(options *facadeOptions) {
		options.credentialReader = reader
	}
}

func WithCacheView(cache core.TokenCache, strategy core.CacheKeyStrategy) FacadeOption {
	return func(options *facadeOptions) {
		options.tokenCache = cache
		options.keyStrategy = strategy
	}
}

func NewFacade(service AcquiringService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("partnercenterbot: acquiring service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	}); ok {
		deps := provider.Dependencies()
		if cfg.credentialReader == nil {
			cfg.credentialReader = deps.CredentialStore
		}
		if cfg.tokenCache == nil {
			cfg.tokenCache = deps.TokenCache
		}
		if cfg.keyStrategy == nil {
			cfg.keyStrategy = deps.KeyStrategy
		}
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		AcquireAuthorizationCode: botcommand.NewAcquireAuthorizationCodeCommand(service),
		AcquireSilent:            botcommand.NewAcquireSilentCommand(service),
		AcquireAppOnly:           botcommand.NewAcquireAppOnlyCommand(service),
		AcquireOnBehalfOf:        botcommand.NewAcquireOnBehalfOfCommand(service),
		AuthorizationURL:         botcommand.NewAuthorizationURLCommand(service),
	}
	if cfg.credentialReader != nil {
		facade.queries.GetApplicationCredential = botquery.NewGetApplicationCredentialQuery(cfg.credentialReader)
	}
	if cfg.tokenCache != nil && cfg.keyStrategy != nil {
		facade.queries.PeekCachedToken = botquery.NewPeekCachedTokenQuery(cfg.tokenCache, cfg.keyStrategy, nil)
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() AcquiringService {
	if f == nil {
		return nil
	}
	return f.service
}
