package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/secretvault/internal/domain/port/driven"
	"github.com/ericfisherdev/secretvault/internal/vaultcrypto"
)

func TestMasterPasswordVault_InitiallyUnset(t *testing.T) {
	vault := NewMasterPasswordVault(&memMasterStore{})
	ctx := context.Background()

	set, err := vault.IsSet(ctx)
	require.NoError(t, err)
	assert.False(t, set)

	ok, err := vault.Verify(ctx, "anything")
	require.NoError(t, err)
	assert.False(t, ok, "verify must fail while unset")
}

func TestMasterPasswordVault_SetAndVerify(t *testing.T) {
	store := &memMasterStore{}
	vault := NewMasterPasswordVault(store)
	ctx := context.Background()

	require.NoError(t, vault.Set(ctx, "Tr0ub4dor"))

	set, err := vault.IsSet(ctx)
	require.NoError(t, err)
	assert.True(t, set)
	assert.Len(t, store.record.Salt, vaultcrypto.SaltSize)

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "same password", password: "Tr0ub4dor", want: true},
		{name: "wrong password", password: "wrong", want: false},
		{name: "different case", password: "tr0ub4dor", want: false},
		{name: "trailing space", password: "Tr0ub4dor ", want: false},
		{name: "empty", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := vault.Verify(ctx, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestMasterPasswordVault_SetTwice(t *testing.T) {
	store := &memMasterStore{}
	vault := NewMasterPasswordVault(store)
	ctx := context.Background()

	require.NoError(t, vault.Set(ctx, "first"))
	before := *store.record

	err := vault.Set(ctx, "second")
	require.ErrorIs(t, err, driven.ErrAlreadyInitialized)

	assert.Equal(t, before.Hash, store.record.Hash)
	assert.Equal(t, before.Salt, store.record.Salt)

	ok, err := vault.Verify(ctx, "first")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = vault.Verify(ctx, "second")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMasterPasswordVault_SetEmpty(t *testing.T) {
	store := &memMasterStore{}
	vault := NewMasterPasswordVault(store)

	err := vault.Set(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyPassword)
	assert.Nil(t, store.record)
}

func TestMasterPasswordVault_StorageFaultIsNotWrongPassword(t *testing.T) {
	storeErr := driven.StorageError("get master password", errors.New("disk I/O error"))
	vault := NewMasterPasswordVault(&memMasterStore{err: storeErr})
	ctx := context.Background()

	ok, err := vault.Verify(ctx, "pw")
	assert.False(t, ok)
	require.ErrorIs(t, err, driven.ErrStorage)

	err = vault.Set(ctx, "pw")
	require.ErrorIs(t, err, driven.ErrStorage)
	assert.NotErrorIs(t, err, driven.ErrAlreadyInitialized)
}
