package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/secretvault/internal/domain/model"
	"github.com/ericfisherdev/secretvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MasterPasswordStore = (*MasterPasswordRepo)(nil)

// MasterPasswordRepo is the SQLite implementation of the MasterPasswordStore
// port. The table's CHECK (id = 1) primary key makes the record a singleton.
type MasterPasswordRepo struct {
	db *DB
}

// NewMasterPasswordRepo creates a new MasterPasswordRepo backed by the given DB.
func NewMasterPasswordRepo(db *DB) *MasterPasswordRepo {
	return &MasterPasswordRepo{db: db}
}

// Exists reports whether the master password record is present.
func (r *MasterPasswordRepo) Exists(ctx context.Context) (bool, error) {
	const query = `SELECT 1 FROM master_password WHERE id = 1`

	var one int
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, driven.StorageError("check master password", err)
	}
	return true, nil
}

// Create inserts the singleton record. A second insert trips the primary key
// constraint and is reported as driven.ErrAlreadyInitialized.
func (r *MasterPasswordRepo) Create(ctx context.Context, mp model.MasterPassword) error {
	const query = `INSERT INTO master_password (id, password_hash, salt, created_at) VALUES (1, ?, ?, ?)`

	createdAt := mp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.Writer.ExecContext(ctx, query, mp.Hash, mp.Salt, formatTime(createdAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create master password: %w", driven.ErrAlreadyInitialized)
		}
		return driven.StorageError("create master password", err)
	}
	return nil
}

// Get returns the master password record, or nil, nil if none has been set.
func (r *MasterPasswordRepo) Get(ctx context.Context) (*model.MasterPassword, error) {
	const query = `SELECT password_hash, salt, created_at FROM master_password WHERE id = 1`

	var mp model.MasterPassword
	var createdAt string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&mp.Hash, &mp.Salt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, driven.StorageError("get master password", err)
	}

	mp.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, driven.StorageError("parse master password created_at", err)
	}
	return &mp, nil
}
