package usecase

import (
	"context"
	"time"

	"github.com/allisson/fieldguard/internal/metrics"
	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
)

// vaultUseCaseWithMetrics decorates VaultUseCase with metrics instrumentation.
type vaultUseCaseWithMetrics struct {
	next    VaultUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultUseCaseWithMetrics wraps a VaultUseCase with metrics recording.
func NewVaultUseCaseWithMetrics(useCase VaultUseCase, m metrics.BusinessMetrics) VaultUseCase {
	return &vaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Encrypt records metrics for encryption operations.
func (v *vaultUseCaseWithMetrics) Encrypt(ctx context.Context, plaintext string) (string, error) {
	start := time.Now()
	ciphertext, err := v.next.Encrypt(ctx, plaintext)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "vault", "vault_encrypt", status)
	v.metrics.RecordDuration(ctx, "vault", "vault_encrypt", time.Since(start), status)

	return ciphertext, err
}

// Decrypt records metrics for decryption operations.
func (v *vaultUseCaseWithMetrics) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	start := time.Now()
	plaintext, err := v.next.Decrypt(ctx, ciphertext)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "vault", "vault_decrypt", status)
	v.metrics.RecordDuration(ctx, "vault", "vault_decrypt", time.Since(start), status)

	return plaintext, err
}

// CreateKey records metrics for key creation.
func (v *vaultUseCaseWithMetrics) CreateKey(ctx context.Context) (*vaultDomain.VaultKey, error) {
	start := time.Now()
	key, err := v.next.CreateKey(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "vault", "vault_key_create", status)
	v.metrics.RecordDuration(ctx, "vault", "vault_key_create", time.Since(start), status)

	return key, err
}
