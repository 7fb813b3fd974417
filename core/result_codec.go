package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	ResultPayloadFormatJSONV1 = "authentication_result_json"
	ResultPayloadVersionV1    = 1
)

// ResultCodec translates an AuthenticationResult to and from the opaque
// byte payload the token cache stores. Adapters that honor a session cache
// use it on both sides of the cache boundary.
type ResultCodec interface {
	Format() string
	Version() int
	Encode(result AuthenticationResult) ([]byte, error)
	Decode(payload []byte) (AuthenticationResult, error)
}

type JSONResultCodec struct{}

func (JSONResultCodec) Format() string {
	return ResultPayloadFormatJSONV1
}

func (JSONResultCodec) Version() int {
	return ResultPayloadVersionV1
}

type jsonResultPayload struct {
	TokenType    string         `json:"token_type,omitempty"`
	AccessToken  string         `json:"access_token,omitempty"`
	ExpiresOn    *time.Time     `json:"expires_on,omitempty"`
	Resource     string         `json:"resource,omitempty"`
	Authority    string         `json:"authority,omitempty"`
	TenantID     string         `json:"tenant_id,omitempty"`
	UserObjectID string         `json:"user_object_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (JSONResultCodec) Encode(result AuthenticationResult) ([]byte, error) {
	if strings.TrimSpace(result.AccessToken) == "" {
		return nil, fmt.Errorf("core: authentication result access token is required")
	}
	payload := jsonResultPayload{
		TokenType:    strings.TrimSpace(result.TokenType),
		AccessToken:  strings.TrimSpace(result.AccessToken),
		Resource:     strings.TrimSpace(result.Resource),
		Authority:    strings.TrimSpace(result.Authority),
		TenantID:     strings.TrimSpace(result.TenantID),
		UserObjectID: strings.TrimSpace(result.UserObjectID),
		Metadata:     copyAnyMap(result.Metadata),
	}
	if !result.ExpiresOn.IsZero() {
		expiresOn := result.ExpiresOn.UTC()
		payload.ExpiresOn = &expiresOn
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("core: encode authentication result: %w", err)
	}
	return encoded, nil
}

func (JSONResultCodec) Decode(payload []byte) (AuthenticationResult, error) {
	if len(payload) == 0 {
		return AuthenticationResult{}, fmt.Errorf("core: authentication result payload is empty")
	}
	decoded := jsonResultPayload{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return AuthenticationResult{}, fmt.Errorf("core: decode authentication result: %w", err)
	}
	result := AuthenticationResult{
		TokenType:    strings.TrimSpace(decoded.TokenType),
		AccessToken:  strings.TrimSpace(decoded.AccessToken),
		Resource:     strings.TrimSpace(decoded.Resource),
		Authority:    strings.TrimSpace(decoded.Authority),
		TenantID:     strings.TrimSpace(decoded.TenantID),
		UserObjectID: strings.TrimSpace(decoded.UserObjectID),
		Metadata:     copyAnyMap(decoded.Metadata),
	}
	if decoded.ExpiresOn != nil {
		result.ExpiresOn = decoded.ExpiresOn.UTC()
	}
	return result, nil
}

var _ ResultCodec = JSONResultCodec{}
