package model

import (
	"strings"
	"time"
)

// Well-known keys inside SecretFields.
const (
	FieldHost     = "host"
	FieldPort     = "port"
	FieldDatabase = "database"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldType     = "type"
)

// DefaultSecretType is applied when a secret is saved without a type.
const DefaultSecretType = "Database"

// SecretFields is the plaintext content of a secret. Values are free-form
// strings; only username and password are required by Validate.
type SecretFields map[string]string

// Get returns the value for key, or "" when absent.
func (f SecretFields) Get(key string) string {
	return f[key]
}

// Validate reports the first missing required field.
func (f SecretFields) Validate() error {
	if strings.TrimSpace(f[FieldUsername]) == "" {
		return &FieldError{Field: FieldUsername}
	}
	if f[FieldPassword] == "" {
		return &FieldError{Field: FieldPassword}
	}
	return nil
}

// WithDefaults returns a copy of f with trimmed text fields and type set to
// DefaultSecretType when empty. The password is kept verbatim.
func (f SecretFields) WithDefaults() SecretFields {
	out := make(SecretFields, len(f)+1)
	for k, v := range f {
		if k == FieldPassword {
			out[k] = v
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	if out[FieldType] == "" {
		out[FieldType] = DefaultSecretType
	}
	return out
}

// FieldError describes a required secret field that is missing.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "secret field " + e.Field + " is required"
}

// Secret is a stored secret record. Payload is the encrypted envelope and is
// opaque outside the crypto layer.
type Secret struct {
	ID        int64
	Name      string
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeSecretName trims surrounding whitespace from a secret name.
// Names are otherwise case-sensitive and compared byte for byte.
func NormalizeSecretName(name string) string {
	return strings.TrimSpace(name)
}
