package vaultcrypto

import (
	"errors"
	"unicode/utf8"

	"github.com/awnumar/memguard"
)

// ErrDecryption is returned when an envelope cannot be turned back into valid
// text. The envelope carries no integrity tag, so a wrong password and
// corrupted data are indistinguishable.
var ErrDecryption = errors.New("wrong master password or corrupted data")

// Encrypt seals plaintext under a key derived from password and a fresh salt.
// The envelope layout is salt(16) || ciphertext, where ciphertext is the
// plaintext XORed with the derived key repeated cyclically.
//
// This construction is not authenticated: it provides confidentiality under
// the right key and no tamper detection. The format is kept byte-compatible
// with existing vault files.
func Encrypt(plaintext, password string) ([]byte, error) {
	key, salt, err := DeriveKey(password, nil)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	envelope := make([]byte, SaltSize+len(plaintext))
	copy(envelope, salt)
	xorKeystream(envelope[SaltSize:], []byte(plaintext), key)
	return envelope, nil
}

// Decrypt opens an envelope produced by Encrypt. It returns ErrDecryption when
// the envelope is shorter than a salt or the recovered bytes are not valid
// UTF-8. A wrong password yields ErrDecryption with overwhelming probability,
// but it can in principle produce valid garbage text.
func Decrypt(envelope []byte, password string) (string, error) {
	if len(envelope) < SaltSize {
		return "", ErrDecryption
	}

	key, _, err := DeriveKey(password, envelope[:SaltSize])
	if err != nil {
		return "", err
	}
	defer memguard.WipeBytes(key)

	plaintext := make([]byte, len(envelope)-SaltSize)
	xorKeystream(plaintext, envelope[SaltSize:], key)
	defer memguard.WipeBytes(plaintext)

	if !utf8.Valid(plaintext) {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}

// xorKeystream writes src XOR key[i mod len(key)] into dst.
func xorKeystream(dst, src, key []byte) {
	for i, b := range src {
		dst[i] = b ^ key[i%len(key)]
	}
}
