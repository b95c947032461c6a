package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VaultKey is the single long-lived key protecting sensitive values. When Wrapped is
// true, Material holds the key encrypted by the KMS keeper.
type VaultKey struct {
	ID        uuid.UUID
	Name      string
	Algorithm Algorithm
	Material  []byte
	Wrapped   bool
	CreatedAt time.Time
}

// KMSKeeper wraps and unwraps key material. *secrets.Keeper from gocloud.dev implements it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	clear(b)
}
