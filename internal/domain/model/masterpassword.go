package model

import "time"

// MasterPassword is the singleton record holding the master password hash.
// Hash is the base64 encoding of the PBKDF2 output computed with Salt.
type MasterPassword struct {
	Hash      string
	Salt      []byte
	CreatedAt time.Time
}
