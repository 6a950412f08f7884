package driven

import "errors"

// ErrStorage marks failures of the persistence layer itself (I/O, driver,
// unexpected constraint violations) so callers can tell them apart from
// authentication or decryption outcomes.
var ErrStorage = errors.New("storage fault")

// StorageError wraps err so that it matches both ErrStorage and err.
func StorageError(op string, err error) error {
	return &storageError{op: op, err: err}
}

type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string { return e.op + ": " + e.err.Error() }

func (e *storageError) Unwrap() []error { return []error{ErrStorage, e.err} }
