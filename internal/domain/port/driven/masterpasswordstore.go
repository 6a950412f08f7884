package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/secretvault/internal/domain/model"
)

// ErrAlreadyInitialized is returned when a master password record already exists.
var ErrAlreadyInitialized = errors.New("master password already set")

// MasterPasswordStore defines the driven port for the singleton master
// password record.
type MasterPasswordStore interface {
	// Exists reports whether the master password record has been created.
	Exists(ctx context.Context) (bool, error)

	// Create inserts the singleton record. Returns ErrAlreadyInitialized if
	// one already exists, including when a concurrent Create won the race.
	Create(ctx context.Context, mp model.MasterPassword) error

	// Get returns the record, or nil, nil when none exists.
	Get(ctx context.Context) (*model.MasterPassword, error)
}
