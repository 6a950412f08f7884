package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/secretvault/internal/domain/model"
	"github.com/ericfisherdev/secretvault/internal/domain/port/driven"
	"github.com/ericfisherdev/secretvault/internal/vaultcrypto"
)

// ErrEmptyPassword is returned when a master password is set to "".
var ErrEmptyPassword = errors.New("master password must not be empty")

// MasterPasswordVault manages the singleton master password record. It moves
// from Unset to Set exactly once and has no way back.
type MasterPasswordVault struct {
	store  driven.MasterPasswordStore
	logger *slog.Logger
}

// NewMasterPasswordVault creates a MasterPasswordVault over store.
func NewMasterPasswordVault(store driven.MasterPasswordStore) *MasterPasswordVault {
	return &MasterPasswordVault{
		store:  store,
		logger: slog.Default(),
	}
}

// IsSet reports whether a master password has been stored.
func (v *MasterPasswordVault) IsSet(ctx context.Context) (bool, error) {
	return v.store.Exists(ctx)
}

// Set hashes password with a fresh salt and stores it. Returns
// driven.ErrAlreadyInitialized, leaving the stored hash untouched, if a master
// password already exists.
func (v *MasterPasswordVault) Set(ctx context.Context, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	set, err := v.store.Exists(ctx)
	if err != nil {
		return err
	}
	if set {
		return fmt.Errorf("set master password: %w", driven.ErrAlreadyInitialized)
	}

	hash, salt, err := vaultcrypto.HashPassword(password, nil)
	if err != nil {
		return fmt.Errorf("hash master password: %w", err)
	}

	// The store's uniqueness constraint settles a race with a concurrent Set.
	if err := v.store.Create(ctx, model.MasterPassword{
		Hash:      hash,
		Salt:      salt,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	v.logger.Info("master password set")
	return nil
}

// Verify reports whether password matches the stored master password. It
// returns false with a nil error for a wrong password or an Unset vault;
// a non-nil error always means the store could not be read.
func (v *MasterPasswordVault) Verify(ctx context.Context, password string) (bool, error) {
	mp, err := v.store.Get(ctx)
	if err != nil {
		return false, err
	}
	if mp == nil {
		return false, nil
	}
	return vaultcrypto.VerifyPassword(password, mp.Hash, mp.Salt), nil
}
