package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

// AcquiringService is the slice of the token service the command handlers
// mutate through.
type AcquiringService interface {
	AcquireByAuthorizationCode(ctx context.Context, req core.AuthorizationCodeRequest) (core.AuthenticationResult, error)
	AcquireSilent(ctx context.Context, req core.SilentRequest) (core.AuthenticationResult, error)
	AcquireAppOnly(ctx context.Context, req core.AppOnlyRequest) (core.AuthenticationResult, error)
	AcquireOnBehalfOf(ctx context.Context, req core.OnBehalfOfRequest) (core.AuthenticationResult, error)
	AuthorizationRequestURL(ctx context.Context, req core.AuthorizationURLRequest) (string, error)
}

type AcquireAuthorizationCodeCommand struct {
	service AcquiringService
}

func NewAcquireAuthorizationCodeCommand(service AcquiringService) *AcquireAuthorizationCodeCommand {
	return &AcquireAuthorizationCodeCommand{service: service}
}

func (c *AcquireAuthorizationCodeCommand) Execute(ctx context.Context, msg AcquireAuthorizationCodeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token service is required")
	}
	out, err := c.service.AcquireByAuthorizationCode(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AcquireSilentCommand struct {
	service AcquiringService
}

func NewAcquireSilentCommand(service AcquiringService) *AcquireSilentCommand {
	return &AcquireSilentCommand{service: service}
}

func (c *AcquireSilentCommand) Execute(ctx context.Context, msg AcquireSilentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token service is required")
	}
	out, err := c.service.AcquireSilent(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AcquireAppOnlyCommand struct {
	service AcquiringService
}

func NewAcquireAppOnlyCommand(service AcquiringService) *AcquireAppOnlyCommand {
	return &AcquireAppOnlyCommand{service: service}
}

func (c *AcquireAppOnlyCommand) Execute(ctx context.Context, msg AcquireAppOnlyMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token service is required")
	}
	out, err := c.service.AcquireAppOnly(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AcquireOnBehalfOfCommand struct {
	service AcquiringService
}

func NewAcquireOnBehalfOfCommand(service AcquiringService) *AcquireOnBehalfOfCommand {
	return &AcquireOnBehalfOfCommand{service: service}
}

func (c *AcquireOnBehalfOfCommand) Execute(ctx context.Context, msg AcquireOnBehalfOfMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token service is required")
	}
	out, err := c.service.AcquireOnBehalfOf(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AuthorizationURLCommand struct {
	service AcquiringService
}

func NewAuthorizationURLCommand(service AcquiringService) *AuthorizationURLCommand {
	return &AuthorizationURLCommand{service: service}
}

func (c *AuthorizationURLCommand) Execute(ctx context.Context, msg AuthorizationURLMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token service is required")
	}
	out, err := c.service.AuthorizationRequestURL(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
