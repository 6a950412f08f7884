package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ericfisherdev/secretvault/internal/domain/model"
	"github.com/ericfisherdev/secretvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SecretStore = (*SecretRepo)(nil)

// SecretRepo is the SQLite implementation of the SecretStore port. It stores
// encrypted envelopes as opaque blobs keyed by unique name.
type SecretRepo struct {
	db *DB
}

// NewSecretRepo creates a new SecretRepo backed by the given DB.
func NewSecretRepo(db *DB) *SecretRepo {
	return &SecretRepo{db: db}
}

// Save inserts the secret or replaces the payload of an existing one with the
// same name. id and created_at survive a replace; updated_at is refreshed.
func (r *SecretRepo) Save(ctx context.Context, name string, payload []byte) error {
	const query = `
		INSERT INTO secrets (name, encrypted_data, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			encrypted_data = excluded.encrypted_data,
			updated_at     = excluded.updated_at`

	now := formatTime(time.Now())
	_, err := r.db.Writer.ExecContext(ctx, query, name, payload, now, now)
	if err != nil {
		return driven.StorageError("save secret "+name, err)
	}
	return nil
}

// Get returns the secret with the given name, or nil, nil if it does not exist.
func (r *SecretRepo) Get(ctx context.Context, name string) (*model.Secret, error) {
	const query = `SELECT id, name, encrypted_data, created_at, updated_at FROM secrets WHERE name = ?`

	secret, err := scanSecret(r.db.Reader.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, driven.StorageError("get secret "+name, err)
	}
	return secret, nil
}

// Delete removes the secret with the given name. Missing names are ignored.
func (r *SecretRepo) Delete(ctx context.Context, name string) error {
	const query = `DELETE FROM secrets WHERE name = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, name); err != nil {
		return driven.StorageError("delete secret "+name, err)
	}
	return nil
}

// Search returns the names containing substr, ordered by name. instr is
// case-sensitive, unlike LIKE.
func (r *SecretRepo) Search(ctx context.Context, substr string) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if substr == "" {
		rows, err = r.db.Reader.QueryContext(ctx, `SELECT name FROM secrets ORDER BY name`)
	} else {
		rows, err = r.db.Reader.QueryContext(ctx, `SELECT name FROM secrets WHERE instr(name, ?) > 0 ORDER BY name`, substr)
	}
	if err != nil {
		return nil, driven.StorageError("search secrets", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, driven.StorageError("scan secret name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, driven.StorageError("iterate secret names", err)
	}

	return names, nil
}

// List returns metadata for every secret ordered by name. Payloads are not loaded.
func (r *SecretRepo) List(ctx context.Context) ([]model.Secret, error) {
	const query = `SELECT id, name, NULL, created_at, updated_at FROM secrets ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, driven.StorageError("list secrets", err)
	}
	defer rows.Close()

	var secrets []model.Secret
	for rows.Next() {
		secret, err := scanSecret(rows)
		if err != nil {
			return nil, driven.StorageError("scan secret", err)
		}
		secrets = append(secrets, *secret)
	}
	if err := rows.Err(); err != nil {
		return nil, driven.StorageError("iterate secrets", err)
	}

	return secrets, nil
}

func scanSecret(s scanner) (*model.Secret, error) {
	var secret model.Secret
	var createdAt, updatedAt string

	err := s.Scan(&secret.ID, &secret.Name, &secret.Payload, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if secret.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if secret.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &secret, nil
}
