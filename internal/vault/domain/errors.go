package domain

import (
	"github.com/allisson/fieldguard/internal/errors"
)

// Vault error definitions.
//
// Encrypt and Decrypt only ever return ErrSecureFailed, ErrDecryptFailed or an error
// wrapping one of them. Underlying causes are logged.
var (
	// ErrSecureFailed indicates a value could not be encrypted.
	ErrSecureFailed = errors.New("failed to secure sensitive data")

	// ErrDecryptFailed indicates a value could not be decrypted.
	ErrDecryptFailed = errors.New("failed to decrypt sensitive data")

	// ErrKeyNotFound indicates decryption was attempted before any key existed.
	ErrKeyNotFound = errors.Wrap(ErrDecryptFailed, "key not found")

	// ErrVaultKeyNotFound indicates the key store holds no key under the requested name.
	ErrVaultKeyNotFound = errors.Wrap(errors.ErrNotFound, "vault key not found")

	// ErrVaultKeyAlreadyExists indicates a key with the same name is already stored.
	// Keys are never rotated.
	ErrVaultKeyAlreadyExists = errors.Wrap(errors.ErrConflict, "vault key already exists")

	// ErrUnsupportedAlgorithm indicates the requested cipher is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates key material is not KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrMalformedCiphertext indicates a ciphertext lacks the version prefix or is too short.
	ErrMalformedCiphertext = errors.Wrap(ErrDecryptFailed, "malformed ciphertext")
)
