// Package mocks provides mock implementations of the vault use case interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
)

// MockVaultUseCase is a mock implementation of VaultUseCase.
type MockVaultUseCase struct {
	mock.Mock
}

// Encrypt mocks the Encrypt method.
func (m *MockVaultUseCase) Encrypt(ctx context.Context, plaintext string) (string, error) {
	args := m.Called(ctx, plaintext)
	return args.String(0), args.Error(1)
}

// Decrypt mocks the Decrypt method.
func (m *MockVaultUseCase) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	args := m.Called(ctx, ciphertext)
	return args.String(0), args.Error(1)
}

// CreateKey mocks the CreateKey method.
func (m *MockVaultUseCase) CreateKey(ctx context.Context) (*vaultDomain.VaultKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultKey), args.Error(1)
}
