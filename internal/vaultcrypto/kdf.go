// Package vaultcrypto implements the password-based primitives of the vault:
// PBKDF2 key derivation, the master password hash, and the salt-prefixed
// envelope used for every stored secret.
package vaultcrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of every salt, both for the master password
	// hash and for secret envelopes.
	SaltSize = 16

	// KeySize is the length of a derived key.
	KeySize = 32

	// Iterations is the PBKDF2-HMAC-SHA256 iteration count.
	Iterations = 100_000
)

// NewSalt returns SaltSize bytes from crypto/rand.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("rand salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a KeySize key from password and salt. When salt is nil a
// fresh one is generated. The salt actually used is returned alongside the key.
// The result is deterministic for a given (password, salt) pair.
func DeriveKey(password string, salt []byte) (key, usedSalt []byte, err error) {
	if salt == nil {
		salt, err = NewSalt()
		if err != nil {
			return nil, nil, err
		}
	}
	return pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New), salt, nil
}

// HashPassword computes the master password hash: the base64 (standard
// alphabet) encoding of the PBKDF2 output for password and salt.
func HashPassword(password string, salt []byte) (hash string, usedSalt []byte, err error) {
	key, usedSalt, err := DeriveKey(password, salt)
	if err != nil {
		return "", nil, err
	}
	defer memguard.WipeBytes(key)

	return base64.StdEncoding.EncodeToString(key), usedSalt, nil
}

// VerifyPassword recomputes the hash of password with salt and compares it
// to storedHash in constant time. A storedHash that is not valid base64
// never matches.
func VerifyPassword(password, storedHash string, salt []byte) bool {
	want, err := base64.StdEncoding.DecodeString(storedHash)
	if err != nil {
		return false
	}

	got, _, err := DeriveKey(password, salt)
	if err != nil {
		return false
	}
	defer memguard.WipeBytes(got)

	return subtle.ConstantTimeCompare(got, want) == 1
}
