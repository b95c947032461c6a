// Package usecase implements the sensitive data vault.
//
// The vault encrypts individual values (SSNs, account numbers) under one long-lived key.
// The key is fetched from the key store on first use, or generated and stored when the
// store has none, and kept in memory afterwards. When a KMS keeper is configured the key
// material is wrapped before it is stored.
package usecase

import (
	"context"

	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
)

// KeyRepository is the secure credential store holding the vault key.
type KeyRepository interface {
	// Create stores key and returns ErrVaultKeyAlreadyExists when its name is taken.
	Create(ctx context.Context, key *vaultDomain.VaultKey) error

	// GetByName returns the key stored under name or ErrVaultKeyNotFound.
	GetByName(ctx context.Context, name string) (*vaultDomain.VaultKey, error)
}

// VaultUseCase encrypts and decrypts sensitive values.
type VaultUseCase interface {
	// Encrypt returns "v1:" + base64(nonce || ciphertext). Any failure returns
	// ErrSecureFailed.
	Encrypt(ctx context.Context, plaintext string) (string, error)

	// Decrypt reverses Encrypt. Failures return ErrDecryptFailed, or ErrKeyNotFound when
	// no key has been created yet.
	Decrypt(ctx context.Context, ciphertext string) (string, error)

	// CreateKey generates and stores the vault key. It fails with
	// ErrVaultKeyAlreadyExists when a key exists.
	CreateKey(ctx context.Context) (*vaultDomain.VaultKey, error)
}
