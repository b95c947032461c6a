// Package service provides the vault's cryptographic primitives: AEAD ciphers and the
// KMS keeper used to wrap the vault key at rest.
package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
)

// AEAD seals and opens values with associated data.
type AEAD interface {
	// Seal encrypts plaintext under a fresh random nonce and returns nonce || ciphertext.
	Seal(plaintext, aad []byte) ([]byte, error)

	// Open reverses Seal.
	Open(sealed, aad []byte) ([]byte, error)
}

type aeadCipher struct {
	aead cipher.AEAD
}

// NewCipher builds the AEAD for alg from a KeySize key.
func NewCipher(key []byte, alg vaultDomain.Algorithm) (AEAD, error) {
	if len(key) != vaultDomain.KeySize {
		return nil, vaultDomain.ErrInvalidKeySize
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch alg {
	case vaultDomain.AESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create AES cipher: %w", err)
		}
		aead, err = cipher.NewGCM(block)
	case vaultDomain.ChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, vaultDomain.ErrUnsupportedAlgorithm
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cipher: %w", alg, err)
	}

	return &aeadCipher{aead: aead}, nil
}

func (c *aeadCipher) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, aad), nil
}

func (c *aeadCipher) Open(sealed, aad []byte) ([]byte, error) {
	size := c.aead.NonceSize()
	if len(sealed) < size+c.aead.Overhead() {
		return nil, vaultDomain.ErrMalformedCiphertext
	}

	plaintext, err := c.aead.Open(nil, sealed[:size], sealed[size:], aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// GenerateKey returns KeySize random bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, vaultDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}
