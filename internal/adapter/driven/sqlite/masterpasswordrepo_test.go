package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/secretvault/internal/domain/model"
	"github.com/ericfisherdev/secretvault/internal/domain/port/driven"
)

func TestMasterPasswordRepo_ExistsInitiallyFalse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMasterPasswordRepo(db)

	ok, err := repo.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	mp, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, mp)
}

func TestMasterPasswordRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMasterPasswordRepo(db)
	ctx := context.Background()

	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := repo.Create(ctx, model.MasterPassword{
		Hash:      "aGFzaA==",
		Salt:      []byte("0123456789abcdef"),
		CreatedAt: createdAt,
	})
	require.NoError(t, err)

	ok, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	mp, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, mp)
	assert.Equal(t, "aGFzaA==", mp.Hash)
	assert.Equal(t, []byte("0123456789abcdef"), mp.Salt)
	assert.True(t, createdAt.Equal(mp.CreatedAt))
}

func TestMasterPasswordRepo_CreateTwice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMasterPasswordRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, model.MasterPassword{Hash: "first", Salt: []byte("salt-one-16bytes")}))

	err := repo.Create(ctx, model.MasterPassword{Hash: "second", Salt: []byte("salt-two-16bytes")})
	require.ErrorIs(t, err, driven.ErrAlreadyInitialized)
	assert.NotErrorIs(t, err, driven.ErrStorage)

	mp, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", mp.Hash)
	assert.Equal(t, []byte("salt-one-16bytes"), mp.Salt)
}

func TestMasterPasswordRepo_ConcurrentCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMasterPasswordRepo(db)
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = repo.Create(ctx, model.MasterPassword{Hash: "h", Salt: []byte("0123456789abcdef")})
		}()
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, driven.ErrAlreadyInitialized)
	}
	assert.Equal(t, 1, wins)
}

func TestMasterPasswordRepo_ClosedDBIsStorageFault(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMasterPasswordRepo(db)
	require.NoError(t, db.Close())

	_, err := repo.Exists(context.Background())
	assert.ErrorIs(t, err, driven.ErrStorage)
}
