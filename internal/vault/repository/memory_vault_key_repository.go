// Package repository implements persistence for the vault key.
//
// The key store is the secure credential store of the vault: it holds exactly one key
// per name. Material may be wrapped by a KMS keeper before it reaches the store.
// PostgreSQL and MySQL implementations are transaction-aware via database.GetTx.
package repository

import (
	"context"
	"sync"

	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
)

// MemoryVaultKeyRepository keeps vault keys in process memory. Keys are lost on restart,
// which also makes every value encrypted before the restart undecryptable.
type MemoryVaultKeyRepository struct {
	mu   sync.RWMutex
	keys map[string]vaultDomain.VaultKey
}

// NewMemoryVaultKeyRepository creates an empty in-memory key store.
func NewMemoryVaultKeyRepository() *MemoryVaultKeyRepository {
	return &MemoryVaultKeyRepository{keys: make(map[string]vaultDomain.VaultKey)}
}

// Create stores key unless its name is taken.
func (m *MemoryVaultKeyRepository) Create(ctx context.Context, key *vaultDomain.VaultKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[key.Name]; ok {
		return vaultDomain.ErrVaultKeyAlreadyExists
	}
	stored := *key
	stored.Material = append([]byte(nil), key.Material...)
	m.keys[key.Name] = stored
	return nil
}

// GetByName returns a copy of the key stored under name.
func (m *MemoryVaultKeyRepository) GetByName(ctx context.Context, name string) (*vaultDomain.VaultKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, ok := m.keys[name]
	if !ok {
		return nil, vaultDomain.ErrVaultKeyNotFound
	}
	key.Material = append([]byte(nil), key.Material...)
	return &key, nil
}
