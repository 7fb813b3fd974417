package core

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrInvalidUserIdentifier = errors.New("core: invalid user identifier")
	ErrInvalidFlowTag        = errors.New("core: invalid flow tag")
	ErrInvalidAuthority      = errors.New("core: invalid authority")
)

// FlowTag names the token-acquisition protocol a call travels through. The
// literal values participate in cache key derivation and must stay stable
// across releases; changing one silently abandons every previously cached
// token under the old key.
type FlowTag string

const (
	FlowAuthorizationCode FlowTag = "AuthorizationCode"
	FlowSilent            FlowTag = "Silent"
	FlowAppOnly           FlowTag = "AppOnly"
	FlowOnBehalfOf        FlowTag = "OnBehalfOf"
)

func (f FlowTag) Validate() error {
	switch f {
	case FlowAuthorizationCode, FlowSilent, FlowAppOnly, FlowOnBehalfOf:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFlowTag, string(f))
	}
}

type userIdentifierKind string

const (
	userKindAny      userIdentifierKind = "any_user"
	userKindObjectID userIdentifierKind = "object_id"
)

// UserIdentifier is a discriminated identity reference: either "any user"
// (the flow does not pin an identity) or a specific directory object id. It
// partitions the token cache and is never an authorization input. Object ids
// are used instead of display names or mail addresses so keys survive
// account renames.
type UserIdentifier struct {
	kind     userIdentifierKind
	objectID string
}

func AnyUser() UserIdentifier {
	return UserIdentifier{kind: userKindAny}
}

func UserWithObjectID(objectID string) UserIdentifier {
	return UserIdentifier{
		kind:     userKindObjectID,
		objectID: strings.TrimSpace(objectID),
	}
}

func (u UserIdentifier) IsAny() bool {
	return u.kind == userKindAny
}

func (u UserIdentifier) ObjectID() string {
	return u.objectID
}

func (u UserIdentifier) Validate() error {
	switch u.kind {
	case userKindAny:
		return nil
	case userKindObjectID:
		if u.objectID == "" {
			return fmt.Errorf("%w: empty object id", ErrInvalidUserIdentifier)
		}
		return nil
	default:
		return fmt.Errorf("%w: identifier is unset", ErrInvalidUserIdentifier)
	}
}

// Discriminator returns the stable cache-partitioning token for this
// identity.
func (u UserIdentifier) Discriminator() string {
	if u.kind == userKindObjectID {
		return string(userKindObjectID) + ":" + u.objectID
	}
	return string(userKindAny)
}

func (u UserIdentifier) String() string {
	return u.Discriminator()
}

// ApplicationCredential is the application's identity at the authority. The
// caller owns it; the core never persists it and clears the wire copy at the
// end of every call.
type ApplicationCredential struct {
	ApplicationID     string
	ApplicationSecret SecureSecret
	UseCache          bool
}

func (c ApplicationCredential) Validate() error {
	if strings.TrimSpace(c.ApplicationID) == "" {
		return fmt.Errorf("core: application id is required")
	}
	if c.ApplicationSecret.Empty() {
		return fmt.Errorf("core: application secret is required")
	}
	return nil
}

// Wire builds the adapter-facing credential. This is the only path from an
// ApplicationCredential to its raw secret.
func (c ApplicationCredential) Wire() (ClientCredential, error) {
	if err := c.Validate(); err != nil {
		return ClientCredential{}, err
	}
	return ClientCredential{
		ApplicationID: strings.TrimSpace(c.ApplicationID),
		secret:        c.ApplicationSecret.reveal(),
	}, nil
}

// AuthenticationResult is the immutable outcome of one authority exchange,
// produced fresh per call or replayed from cache by the adapter.
type AuthenticationResult struct {
	TokenType    string
	AccessToken  string
	ExpiresOn    time.Time
	Resource     string
	Authority    string
	TenantID     string
	UserObjectID string
	Metadata     map[string]any
}

func (r AuthenticationResult) Expired(now time.Time) bool {
	if r.ExpiresOn.IsZero() {
		return true
	}
	return !r.ExpiresOn.After(now)
}

func (r AuthenticationResult) Clone() AuthenticationResult {
	cloned := r
	cloned.Metadata = copyAnyMap(r.Metadata)
	return cloned
}

// ValidateAuthority checks that an authority reference is an absolute URL
// with a host, e.g. https://login.example/tenant.
func ValidateAuthority(authority string) error {
	trimmed := strings.TrimSpace(authority)
	if trimmed == "" {
		return fmt.Errorf("%w: authority is required", ErrInvalidAuthority)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAuthority, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidAuthority, trimmed)
	}
	return nil
}

// AuthorityHost extracts the lowercased host of an authority URL, used for
// registry routing across cloud instances.
func AuthorityHost(authority string) (string, error) {
	if err := ValidateAuthority(authority); err != nil {
		return "", err
	}
	parsed, err := url.Parse(strings.TrimSpace(authority))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAuthority, err)
	}
	return strings.ToLower(parsed.Host), nil
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
