package sqlstore_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
	botmigrations "github.com/Perf-Org-5KRepos/Partner-Center-Bot/migrations"
	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/security"
	sqlstore "github.com/Perf-Org-5KRepos/Partner-Center-Bot/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "partner-center-bot-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"bot_application_credentials",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "bot_application_credentials" {
		t.Fatalf("expected bot_application_credentials table, got %q", tableName)
	}
}

func TestCredentialStore_ProvisionAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	secrets := newTestSecretProvider(t)
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client, secrets)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	store := factory.CredentialStore()
	if store == nil {
		t.Fatalf("expected credential store from factory")
	}

	if err := store.Provision(ctx, sqlstore.ProvisionCredentialInput{
		ApplicationID: "app-round-trip",
		Secret:        core.NewSecureSecret("super-sensitive-value"),
		UseCache:      true,
	}); err != nil {
		t.Fatalf("provision credential: %v", err)
	}

	credential, err := store.GetApplicationCredential(ctx, "app-round-trip")
	if err != nil {
		t.Fatalf("get application credential: %v", err)
	}
	if credential.ApplicationID != "app-round-trip" {
		t.Fatalf("expected application id app-round-trip, got %q", credential.ApplicationID)
	}
	if !credential.UseCache {
		t.Fatalf("expected use cache flag to survive the round trip")
	}

	wire, err := credential.Wire()
	if err != nil {
		t.Fatalf("wire credential: %v", err)
	}
	if wire.Secret() != "super-sensitive-value" {
		t.Fatalf("expected decrypted secret to match the provisioned value")
	}
	wire.Clear()
}

func TestCredentialStore_RowHoldsCiphertextOnly(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	secrets := newTestSecretProvider(t)
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client, secrets)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	plaintext := "cleartext-must-not-land-on-disk"
	if err := factory.CredentialStore().Provision(ctx, sqlstore.ProvisionCredentialInput{
		ApplicationID: "app-ciphertext",
		Secret:        core.NewSecureSecret(plaintext),
	}); err != nil {
		t.Fatalf("provision credential: %v", err)
	}

	var stored []byte
	if err := client.DB().NewRaw(
		"SELECT encrypted_secret FROM bot_application_credentials WHERE application_id = ?",
		"app-ciphertext",
	).Scan(ctx, &stored); err != nil {
		t.Fatalf("read raw row: %v", err)
	}
	if len(stored) == 0 {
		t.Fatalf("expected an encrypted payload in the row")
	}
	if bytes.Contains(stored, []byte(plaintext)) {
		t.Fatalf("expected the row to hold ciphertext, found the cleartext secret")
	}

	var keyIDColumn string
	if err := client.DB().NewRaw(
		"SELECT encryption_key_id FROM bot_application_credentials WHERE application_id = ?",
		"app-ciphertext",
	).Scan(ctx, &keyIDColumn); err != nil {
		t.Fatalf("read encryption key id: %v", err)
	}
	if keyIDColumn != secrets.KeyID() {
		t.Fatalf("expected encryption key id %q, got %q", secrets.KeyID(), keyIDColumn)
	}
}

func TestCredentialStore_ReprovisionReplacesActiveRow(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	secrets := newTestSecretProvider(t)
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client, secrets)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.CredentialStore()

	if err := store.Provision(ctx, sqlstore.ProvisionCredentialInput{
		ApplicationID: "app-rotated",
		Secret:        core.NewSecureSecret("first-secret"),
	}); err != nil {
		t.Fatalf("provision first credential: %v", err)
	}
	if err := store.Provision(ctx, sqlstore.ProvisionCredentialInput{
		ApplicationID: "app-rotated",
		Secret:        core.NewSecureSecret("second-secret"),
	}); err != nil {
		t.Fatalf("provision second credential: %v", err)
	}

	credential, err := store.GetApplicationCredential(ctx, "app-rotated")
	if err != nil {
		t.Fatalf("get application credential: %v", err)
	}
	wire, err := credential.Wire()
	if err != nil {
		t.Fatalf("wire credential: %v", err)
	}
	if wire.Secret() != "second-secret" {
		t.Fatalf("expected the latest secret after re-provisioning, got %q", wire.Secret())
	}
	wire.Clear()

	var activeCount int
	if err := client.DB().NewRaw(
		"SELECT COUNT(*) FROM bot_application_credentials WHERE application_id = ? AND status = 'active'",
		"app-rotated",
	).Scan(ctx, &activeCount); err != nil {
		t.Fatalf("count active rows: %v", err)
	}
	if activeCount != 1 {
		t.Fatalf("expected exactly one active row after rotation, got %d", activeCount)
	}

	var replacedReason string
	if err := client.DB().NewRaw(
		"SELECT deactivation_reason FROM bot_application_credentials WHERE application_id = ? AND status = 'inactive'",
		"app-rotated",
	).Scan(ctx, &replacedReason); err != nil {
		t.Fatalf("read deactivation reason: %v", err)
	}
	if replacedReason != "replaced" {
		t.Fatalf("expected replaced deactivation reason, got %q", replacedReason)
	}
}

func TestCredentialStore_DeactivateThenGetNotFound(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	secrets := newTestSecretProvider(t)
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client, secrets)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.CredentialStore()

	if err := store.Provision(ctx, sqlstore.ProvisionCredentialInput{
		ApplicationID: "app-retired",
		Secret:        core.NewSecureSecret("short-lived"),
	}); err != nil {
		t.Fatalf("provision credential: %v", err)
	}

	if err := store.Deactivate(ctx, "app-retired", "offboarded"); err != nil {
		t.Fatalf("deactivate credential: %v", err)
	}

	if _, err := store.GetApplicationCredential(ctx, "app-retired"); !errors.Is(err, core.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound after deactivation, got %v", err)
	}

	if err := store.Deactivate(ctx, "app-retired", "again"); !errors.Is(err, core.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound on repeated deactivation, got %v", err)
	}
}

func TestCredentialStore_GetUnknownApplicationNotFound(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client, newTestSecretProvider(t))
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	if _, err := factory.CredentialStore().GetApplicationCredential(ctx, "app-never-provisioned"); !errors.Is(err, core.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound for unknown application, got %v", err)
	}
}

func TestCredentialStore_SatisfiesCoreCredentialStore(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client, newTestSecretProvider(t))
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	if err := factory.CredentialStore().Provision(ctx, sqlstore.ProvisionCredentialInput{
		ApplicationID: "app-core-iface",
		Secret:        core.NewSecureSecret("value"),
	}); err != nil {
		t.Fatalf("provision credential: %v", err)
	}

	var store core.CredentialStore = factory.CredentialStore()
	credential, err := store.GetApplicationCredential(ctx, "app-core-iface")
	if err != nil {
		t.Fatalf("get via core interface: %v", err)
	}
	if credential.ApplicationID != "app-core-iface" {
		t.Fatalf("expected application id app-core-iface, got %q", credential.ApplicationID)
	}
}

func newTestSecretProvider(t *testing.T) *security.AppKeySecretProvider {
	t.Helper()
	provider, err := security.NewAppKeySecretProviderFromString(
		"sqlstore-test-key",
		security.WithKeyID("sqlstore-test"),
	)
	if err != nil {
		t.Fatalf("new secret provider: %v", err)
	}
	return provider
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:pcbot-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = botmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != botmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, botmigrations.WithValidationTargets(botmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
