// Package cryptox seals small secrets (credential values) with AES-GCM under
// a key derived from a passphrase with argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/docvault/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	KeySize  = 32
	SaltSize = 16
)

var ErrShortCiphertext = errors.New("ciphertext too short")

// DeriveKey stretches a passphrase into a KeySize-byte AES-256 key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// NewSalt returns a random salt for DeriveKey.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// Seal encrypts plaintext with AES-GCM and returns nonce||ciphertext.
// The optional additional data is authenticated but not stored; Open must be
// called with the same value.
func Seal(key, plaintext, additional []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	out := make([]byte, 0, len(nonce)+len(plaintext)+aesgcm.Overhead())
	out = append(out, nonce...)

	return aesgcm.Seal(out, nonce, plaintext, additional), nil
}

// Open reverses Seal.
func Open(key, sealed, additional []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(sealed) < ns+aesgcm.Overhead() {
		return nil, ErrShortCiphertext
	}

	return aesgcm.Open(nil, sealed[:ns], sealed[ns:], additional)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
