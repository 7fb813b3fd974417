package command

import (
	"fmt"
	"strings"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

const (
	TypeAcquireAuthorizationCode = "token.command.acquire.authorization_code"
	TypeAcquireSilent            = "token.command.acquire.silent"
	TypeAcquireAppOnly           = "token.command.acquire.app_only"
	TypeAcquireOnBehalfOf        = "token.command.acquire.on_behalf_of"
	TypeAuthorizationURL         = "token.command.authorization_url"
)

type AcquireAuthorizationCodeMessage struct {
	Request core.AuthorizationCodeRequest
}

func (AcquireAuthorizationCodeMessage) Type() string { return TypeAcquireAuthorizationCode }

func (m AcquireAuthorizationCodeMessage) Validate() error {
	if strings.TrimSpace(m.Request.Authority) == "" {
		return fmt.Errorf("command: authority is required")
	}
	if strings.TrimSpace(m.Request.Code) == "" {
		return fmt.Errorf("command: authorization code is required")
	}
	if strings.TrimSpace(m.Request.RedirectURI) == "" {
		return fmt.Errorf("command: redirect uri is required")
	}
	if strings.TrimSpace(m.Request.Resource) == "" {
		return fmt.Errorf("command: resource is required")
	}
	return validateCredential(m.Request.Credential)
}

type AcquireSilentMessage struct {
	Request core.SilentRequest
}

func (AcquireSilentMessage) Type() string { return TypeAcquireSilent }

func (m AcquireSilentMessage) Validate() error {
	if strings.TrimSpace(m.Request.Authority) == "" {
		return fmt.Errorf("command: authority is required")
	}
	if strings.TrimSpace(m.Request.Resource) == "" {
		return fmt.Errorf("command: resource is required")
	}
	if strings.TrimSpace(m.Request.ClientID) == "" {
		return fmt.Errorf("command: client id is required")
	}
	if err := m.Request.User.Validate(); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	return nil
}

type AcquireAppOnlyMessage struct {
	Request core.AppOnlyRequest
}

func (AcquireAppOnlyMessage) Type() string { return TypeAcquireAppOnly }

func (m AcquireAppOnlyMessage) Validate() error {
	if strings.TrimSpace(m.Request.Authority) == "" {
		return fmt.Errorf("command: authority is required")
	}
	if strings.TrimSpace(m.Request.Resource) == "" {
		return fmt.Errorf("command: resource is required")
	}
	return validateCredential(m.Request.Credential)
}

type AcquireOnBehalfOfMessage struct {
	Request core.OnBehalfOfRequest
}

func (AcquireOnBehalfOfMessage) Type() string { return TypeAcquireOnBehalfOf }

func (m AcquireOnBehalfOfMessage) Validate() error {
	if strings.TrimSpace(m.Request.Authority) == "" {
		return fmt.Errorf("command: authority is required")
	}
	if strings.TrimSpace(m.Request.Resource) == "" {
		return fmt.Errorf("command: resource is required")
	}
	if m.Request.Assertion.Empty() {
		return fmt.Errorf("command: user assertion is required")
	}
	return validateCredential(m.Request.Credential)
}

type AuthorizationURLMessage struct {
	Request core.AuthorizationURLRequest
}

func (AuthorizationURLMessage) Type() string { return TypeAuthorizationURL }

func (m AuthorizationURLMessage) Validate() error {
	if strings.TrimSpace(m.Request.Authority) == "" {
		return fmt.Errorf("command: authority is required")
	}
	if strings.TrimSpace(m.Request.Resource) == "" {
		return fmt.Errorf("command: resource is required")
	}
	if strings.TrimSpace(m.Request.ClientID) == "" {
		return fmt.Errorf("command: client id is required")
	}
	if strings.TrimSpace(m.Request.RedirectURI) == "" {
		return fmt.Errorf("command: redirect uri is required")
	}
	return nil
}

func validateCredential(credential core.ApplicationCredential) error {
	if strings.TrimSpace(credential.ApplicationID) == "" {
		return fmt.Errorf("command: application id is required")
	}
	if credential.ApplicationSecret.Empty() {
		return fmt.Errorf("command: application secret is required")
	}
	return nil
}
