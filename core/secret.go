package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SecureSecret wraps a raw secret so it cannot leak through default string
// conversion or serialization. The raw value is reachable only by the
// wire-credential construction inside this package; everything else sees
// [REDACTED]. Clear wipes the shared backing value, so clearing any copy
// clears them all.
type SecureSecret struct {
	value *string
}

func NewSecureSecret(raw string) SecureSecret {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SecureSecret{}
	}
	return SecureSecret{value: &trimmed}
}

func (s SecureSecret) Empty() bool {
	return s.value == nil || *s.value == ""
}

func (s *SecureSecret) Clear() {
	if s == nil || s.value == nil {
		return
	}
	*s.value = ""
	s.value = nil
}

func (s SecureSecret) String() string {
	return RedactedValue
}

func (s SecureSecret) GoString() string {
	return RedactedValue
}

func (s SecureSecret) MarshalText() ([]byte, error) {
	return []byte(RedactedValue), nil
}

func (s SecureSecret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + RedactedValue + `"`), nil
}

func (s SecureSecret) reveal() string {
	if s.value == nil {
		return ""
	}
	return *s.value
}

// ClientCredential is the wire form of an application credential, built by
// ApplicationCredential.Wire for the authority adapter and cleared by the
// service before the call returns.
type ClientCredential struct {
	ApplicationID string

	secret string
}

// Secret exposes the raw secret to the authority adapter's
// credential-construction step. No other caller has a reason to touch it.
func (c ClientCredential) Secret() string {
	return c.secret
}

func (c ClientCredential) Empty() bool {
	return c.ApplicationID == "" && c.secret == ""
}

func (c *ClientCredential) Clear() {
	if c == nil {
		return
	}
	c.ApplicationID = ""
	c.secret = ""
}

func (c ClientCredential) String() string {
	return RedactedValue
}

func (c ClientCredential) GoString() string {
	return RedactedValue
}

func (c ClientCredential) MarshalText() ([]byte, error) {
	return []byte(RedactedValue), nil
}

func (c ClientCredential) MarshalJSON() ([]byte, error) {
	return []byte(`"` + RedactedValue + `"`), nil
}

// UserAssertionTypeJWTBearer is the fixed assertion-type identifier the
// on-behalf-of exchange presents to the authority.
const UserAssertionTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// UserAssertion carries a user-held bearer token for the on-behalf-of flow.
// Like SecureSecret it never renders in cleartext.
type UserAssertion struct {
	token         string
	assertionType string
}

func NewUserAssertion(token string) UserAssertion {
	return UserAssertion{
		token:         strings.TrimSpace(token),
		assertionType: UserAssertionTypeJWTBearer,
	}
}

func (a UserAssertion) Empty() bool {
	return a.token == ""
}

func (a UserAssertion) AssertionType() string {
	if a.assertionType == "" {
		return UserAssertionTypeJWTBearer
	}
	return a.assertionType
}

// Token exposes the raw assertion to the authority adapter only.
func (a UserAssertion) Token() string {
	return a.token
}

// Fingerprint returns a stable non-reversible digest of the assertion,
// usable as a cache principal when user-scoped on-behalf-of keys are enabled
// and no object id accompanies the request.
func (a UserAssertion) Fingerprint() string {
	if a.token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(a.token))
	return hex.EncodeToString(sum[:16])
}

func (a *UserAssertion) Clear() {
	if a == nil {
		return
	}
	a.token = ""
}

func (a UserAssertion) String() string {
	return RedactedValue
}

func (a UserAssertion) GoString() string {
	return RedactedValue
}

func (a UserAssertion) MarshalText() ([]byte, error) {
	return []byte(RedactedValue), nil
}

func (a UserAssertion) MarshalJSON() ([]byte, error) {
	return []byte(`"` + RedactedValue + `"`), nil
}
