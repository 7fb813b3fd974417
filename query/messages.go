package query

import (
	"fmt"
	"strings"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

const (
	TypeGetApplicationCredential = "token.query.credential.get"
	TypePeekCachedToken          = "token.query.cache.peek"
)

type GetApplicationCredentialMessage struct {
	ApplicationID string
}

func (GetApplicationCredentialMessage) Type() string { return TypeGetApplicationCredential }

func (m GetApplicationCredentialMessage) Validate() error {
	if strings.TrimSpace(m.ApplicationID) == "" {
		return fmt.Errorf("query: application id is required")
	}
	return nil
}

// PeekCachedTokenMessage inspects the token cache without touching the
// authority. The cache key is derived from the same dimensions the service
// uses on writes.
type PeekCachedTokenMessage struct {
	Flow      core.FlowTag
	Authority string
	Resource  string
	Principal string
}

func (PeekCachedTokenMessage) Type() string { return TypePeekCachedToken }

func (m PeekCachedTokenMessage) Validate() error {
	if err := m.Flow.Validate(); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if strings.TrimSpace(m.Authority) == "" {
		return fmt.Errorf("query: authority is required")
	}
	if strings.TrimSpace(m.Resource) == "" {
		return fmt.Errorf("query: resource is required")
	}
	return nil
}
