package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/secretvault/internal/domain/model"
	"github.com/ericfisherdev/secretvault/internal/domain/port/driven"
	"github.com/ericfisherdev/secretvault/internal/vaultcrypto"
)

// Sentinel errors returned by VaultService.
var (
	// ErrAuthenticationFailed means the supplied master password did not match,
	// or no master password has been set yet.
	ErrAuthenticationFailed = errors.New("master password verification failed")

	// ErrInvalidSecret means the secret name or fields were rejected before any write.
	ErrInvalidSecret = errors.New("invalid secret")
)

// VaultService is the encrypted secret store facade. Every operation that
// reads or writes secret content re-verifies the master password passed in
// by the caller; neither the password nor any derived key outlives the call.
type VaultService struct {
	master  *MasterPasswordVault
	secrets driven.SecretStore
	logger  *slog.Logger
}

// NewVaultService creates a VaultService. A nil logger uses slog.Default().
func NewVaultService(masterStore driven.MasterPasswordStore, secretStore driven.SecretStore, logger *slog.Logger) *VaultService {
	if logger == nil {
		logger = slog.Default()
	}
	master := NewMasterPasswordVault(masterStore)
	master.logger = logger

	return &VaultService{
		master:  master,
		secrets: secretStore,
		logger:  logger,
	}
}

// IsMasterPasswordSet reports whether the vault has been initialized.
func (s *VaultService) IsMasterPasswordSet(ctx context.Context) (bool, error) {
	return s.master.IsSet(ctx)
}

// SetMasterPassword initializes the vault. It succeeds at most once.
func (s *VaultService) SetMasterPassword(ctx context.Context, password string) error {
	return s.master.Set(ctx, password)
}

// VerifyMasterPassword reports whether password unlocks the vault.
func (s *VaultService) VerifyMasterPassword(ctx context.Context, password string) (bool, error) {
	return s.master.Verify(ctx, password)
}

// SaveSecret encrypts fields under masterPassword and stores them as name,
// replacing any existing secret with that name entirely. Nothing is written
// when verification fails.
func (s *VaultService) SaveSecret(ctx context.Context, name string, fields model.SecretFields, masterPassword string) error {
	name = model.NormalizeSecretName(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSecret)
	}

	if err := s.authenticate(ctx, "save", name, masterPassword); err != nil {
		return err
	}

	if fields == nil {
		fields = model.SecretFields{}
	}
	// encoding/json sorts map keys, so the serialization is canonical.
	plaintext, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode secret %q: %w", name, err)
	}

	envelope, err := vaultcrypto.Encrypt(string(plaintext), masterPassword)
	if err != nil {
		return fmt.Errorf("encrypt secret %q: %w", name, err)
	}

	if err := s.secrets.Save(ctx, name, envelope); err != nil {
		return err
	}

	s.logger.Info("secret saved", "name", name)
	return nil
}

// GetSecret returns the decrypted fields of the named secret. It fails with
// ErrAuthenticationFailed before the envelope is read when masterPassword is
// wrong, driven.ErrSecretNotFound when no such secret exists, and
// vaultcrypto.ErrDecryption when the envelope does not decode.
func (s *VaultService) GetSecret(ctx context.Context, name, masterPassword string) (model.SecretFields, error) {
	name = model.NormalizeSecretName(name)

	if err := s.authenticate(ctx, "get", name, masterPassword); err != nil {
		return nil, err
	}

	secret, err := s.secrets.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, fmt.Errorf("get secret %q: %w", name, driven.ErrSecretNotFound)
	}

	// Verification and decryption use independently salted keys, so a verified
	// password does not guarantee the envelope decrypts.
	plaintext, err := vaultcrypto.Decrypt(secret.Payload, masterPassword)
	if err != nil {
		s.logger.Warn("secret decryption failed", "name", name, "error", err)
		return nil, fmt.Errorf("decrypt secret %q: %w", name, err)
	}

	var fields model.SecretFields
	if err := json.Unmarshal([]byte(plaintext), &fields); err != nil {
		s.logger.Warn("secret payload is not valid JSON", "name", name)
		return nil, fmt.Errorf("decode secret %q: %w", name, vaultcrypto.ErrDecryption)
	}
	if fields == nil {
		fields = model.SecretFields{}
	}

	return fields, nil
}

// DeleteSecret removes the named secret after verifying masterPassword.
// Deleting a secret that does not exist is not an error.
func (s *VaultService) DeleteSecret(ctx context.Context, name, masterPassword string) error {
	name = model.NormalizeSecretName(name)

	if err := s.authenticate(ctx, "delete", name, masterPassword); err != nil {
		return err
	}

	if err := s.secrets.Delete(ctx, name); err != nil {
		return err
	}

	s.logger.Info("secret deleted", "name", name)
	return nil
}

// SearchSecrets returns secret names containing substr, sorted. Names are not
// treated as sensitive, so no password is required.
func (s *VaultService) SearchSecrets(ctx context.Context, substr string) ([]string, error) {
	return s.secrets.Search(ctx, substr)
}

// ListSecrets returns name and timestamp metadata for every secret.
func (s *VaultService) ListSecrets(ctx context.Context) ([]model.Secret, error) {
	return s.secrets.List(ctx)
}

// ConnectionString renders the named secret as a libpq-style keyword/value
// connection string. Missing fields render as empty values.
func (s *VaultService) ConnectionString(ctx context.Context, name, masterPassword string) (string, error) {
	fields, err := s.GetSecret(ctx, name, masterPassword)
	if err != nil {
		return "", err
	}
	return FormatConnectionString(fields), nil
}

// FormatConnectionString renders fields as
// "host=<h> port=<p> dbname=<d> user=<u> password=<pw>".
func FormatConnectionString(fields model.SecretFields) string {
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s",
		fields.Get(model.FieldHost),
		fields.Get(model.FieldPort),
		fields.Get(model.FieldDatabase),
		fields.Get(model.FieldUsername),
		fields.Get(model.FieldPassword),
	)
}

func (s *VaultService) authenticate(ctx context.Context, op, name, masterPassword string) error {
	ok, err := s.master.Verify(ctx, masterPassword)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("master password rejected", "op", op, "name", name)
		return fmt.Errorf("%s secret %q: %w", op, name, ErrAuthenticationFailed)
	}
	return nil
}
