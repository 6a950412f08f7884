package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/secretvault/internal/domain/model"
)

// ErrSecretNotFound indicates no secret exists with the requested name.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore defines the driven port for secret persistence. Payloads are
// opaque encrypted envelopes; no encryption happens behind this interface.
type SecretStore interface {
	// Save inserts or fully replaces the secret named name and refreshes updated_at.
	Save(ctx context.Context, name string, payload []byte) error

	// Get returns the secret named name, or nil, nil if it does not exist.
	Get(ctx context.Context, name string) (*model.Secret, error)

	// Delete removes the secret. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// Search returns the names containing substr (case-sensitive), ordered
	// lexicographically. An empty substr returns every name.
	Search(ctx context.Context, substr string) ([]string, error)

	// List returns all secrets ordered by name without their payloads.
	List(ctx context.Context) ([]model.Secret, error)
}
