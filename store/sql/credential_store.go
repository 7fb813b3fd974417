package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

// ProvisionCredentialInput registers or replaces the stored secret for an
// application. The raw secret exists only for the duration of the call; the
// row holds ciphertext.
type ProvisionCredentialInput struct {
	ApplicationID string
	Secret        core.SecureSecret
	UseCache      bool
}

// ApplicationCredentialStore keeps application credentials in SQL with the
// secret sealed by the configured secret provider. One active row per
// application; provisioning deactivates the previous one.
type ApplicationCredentialStore struct {
	db      *bun.DB
	repo    repository.Repository[*appCredentialRecord]
	secrets core.SecretProvider
}

func NewApplicationCredentialStore(db *bun.DB, secrets core.SecretProvider) (*ApplicationCredentialStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	if secrets == nil {
		return nil, fmt.Errorf("sqlstore: secret provider is required")
	}
	repo := repository.NewRepository[*appCredentialRecord](db, appCredentialHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid credential repository wiring: %w", err)
		}
	}
	return &ApplicationCredentialStore{db: db, repo: repo, secrets: secrets}, nil
}

func (s *ApplicationCredentialStore) Provision(ctx context.Context, in ProvisionCredentialInput) error {
	if s == nil || s.repo == nil || s.db == nil || s.secrets == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	applicationID := strings.TrimSpace(in.ApplicationID)
	if applicationID == "" {
		return fmt.Errorf("sqlstore: application id is required")
	}
	if in.Secret.Empty() {
		return fmt.Errorf("sqlstore: application secret is required")
	}

	wire, err := core.ApplicationCredential{
		ApplicationID:     applicationID,
		ApplicationSecret: in.Secret,
	}.Wire()
	if err != nil {
		return err
	}
	defer wire.Clear()

	encrypted, err := s.secrets.Encrypt(ctx, []byte(wire.Secret()))
	if err != nil {
		return fmt.Errorf("sqlstore: seal application secret: %w", err)
	}

	now := time.Now().UTC()
	record := &appCredentialRecord{
		ID:                uuid.New().String(),
		ApplicationID:     applicationID,
		EncryptedSecret:   encrypted,
		PayloadFormat:     appCredentialPayloadFormat,
		PayloadVersion:    appCredentialPayloadVersion,
		EncryptionKeyID:   keyID(s.secrets),
		EncryptionVersion: keyVersion(s.secrets),
		UseCache:          in.UseCache,
		Status:            appCredentialStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*appCredentialRecord)(nil)).
			Set("status = ?", appCredentialStatusInactive).
			Set("deactivation_reason = ?", "replaced").
			Set("updated_at = ?", now).
			Where("application_id = ?", applicationID).
			Where("status = ?", appCredentialStatusActive).
			Exec(ctx); err != nil {
			return err
		}
		_, err := s.repo.CreateTx(ctx, tx, record)
		return err
	})
}

// GetApplicationCredential loads the active credential for an application and
// unseals the secret. Missing or inactive rows surface as
// core.ErrCredentialNotFound.
func (s *ApplicationCredentialStore) GetApplicationCredential(ctx context.Context, applicationID string) (core.ApplicationCredential, error) {
	if s == nil || s.repo == nil || s.secrets == nil {
		return core.ApplicationCredential{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return core.ApplicationCredential{}, fmt.Errorf("sqlstore: application id is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("application_id", "=", applicationID),
		repository.SelectBy("status", "=", appCredentialStatusActive),
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.ApplicationCredential{}, err
	}
	if len(records) == 0 {
		return core.ApplicationCredential{}, fmt.Errorf("%w: %s", core.ErrCredentialNotFound, applicationID)
	}

	record := records[0]
	plaintext, err := s.secrets.Decrypt(ctx, record.EncryptedSecret)
	if err != nil {
		return core.ApplicationCredential{}, fmt.Errorf("sqlstore: unseal application secret: %w", err)
	}

	return core.ApplicationCredential{
		ApplicationID:     record.ApplicationID,
		ApplicationSecret: core.NewSecureSecret(string(plaintext)),
		UseCache:          record.UseCache,
	}, nil
}

func (s *ApplicationCredentialStore) Deactivate(ctx context.Context, applicationID string, reason string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return fmt.Errorf("sqlstore: application id is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "deactivated"
	}

	result, err := s.db.NewUpdate().
		Model((*appCredentialRecord)(nil)).
		Set("status = ?", appCredentialStatusInactive).
		Set("deactivation_reason = ?", reason).
		Set("updated_at = ?", time.Now().UTC()).
		Where("application_id = ?", applicationID).
		Where("status = ?", appCredentialStatusActive).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", core.ErrCredentialNotFound, applicationID)
	}
	return nil
}

func keyID(secrets core.SecretProvider) string {
	if provider, ok := secrets.(interface{ KeyID() string }); ok {
		return provider.KeyID()
	}
	return "unknown"
}

func keyVersion(secrets core.SecretProvider) int {
	if provider, ok := secrets.(interface{ Version() int }); ok {
		return provider.Version()
	}
	return 0
}
