// Package sqlstore persists application credentials behind the token core's
// store contracts. Secrets are sealed by a core.SecretProvider before they
// touch a row.
package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type appCredentialRecord struct {
	bun.BaseModel `bun:"table:bot_application_credentials,alias:bac"`

	ID                 string     `bun:"id,pk"`
	ApplicationID      string     `bun:"application_id,notnull"`
	EncryptedSecret    []byte     `bun:"encrypted_secret,notnull"`
	PayloadFormat      string     `bun:"payload_format,notnull"`
	PayloadVersion     int        `bun:"payload_version,notnull"`
	EncryptionKeyID    string     `bun:"encryption_key_id,notnull"`
	EncryptionVersion  int        `bun:"encryption_version,notnull"`
	UseCache           bool       `bun:"use_cache,notnull"`
	Status             string     `bun:"status,notnull"`
	DeactivationReason string     `bun:"deactivation_reason,notnull"`
	CreatedAt          time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt          time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DeletedAt          *time.Time `bun:"deleted_at,soft_delete"`
}

const (
	appCredentialStatusActive   = "active"
	appCredentialStatusInactive = "inactive"

	appCredentialPayloadFormat  = "application_secret_raw"
	appCredentialPayloadVersion = 1
)
