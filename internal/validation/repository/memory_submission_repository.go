// Package repository implements the duplicate-submission key-value stores.
//
// Three implementations satisfy usecase.SubmissionRepository:
//   - Memory: a mutex-guarded map for single-instance deployments and tests
//   - PostgreSQL: INSERT ... ON CONFLICT with an expiry predicate
//   - MySQL: INSERT ... ON DUPLICATE KEY UPDATE with an expiry predicate
//
// Every implementation makes the set-if-absent check atomic, so two identical
// submissions racing each other cannot both be accepted. Expired keys behave as absent
// and are purged by DeleteExpired.
package repository

import (
	"context"
	"sync"
	"time"

	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
)

type memorySubmission struct {
	value     []byte
	expiresAt time.Time
}

// MemorySubmissionRepository is an in-process TTL store.
type MemorySubmissionRepository struct {
	mu    sync.Mutex
	items map[string]memorySubmission
	now   func() time.Time
}

// NewMemorySubmissionRepository creates an empty in-memory store. A nil now uses time.Now.
func NewMemorySubmissionRepository(now func() time.Time) *MemorySubmissionRepository {
	if now == nil {
		now = time.Now
	}
	return &MemorySubmissionRepository{
		items: make(map[string]memorySubmission),
		now:   now,
	}
}

// SetIfAbsent stores value under key unless a live entry exists.
func (m *MemorySubmissionRepository) SetIfAbsent(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if item, ok := m.items[key]; ok && now.Before(item.expiresAt) {
		return false, nil
	}

	m.items[key] = memorySubmission{
		value:     append([]byte(nil), value...),
		expiresAt: now.Add(ttl),
	}
	return true, nil
}

// Get returns the live value under key.
func (m *MemorySubmissionRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok || !m.now().Before(item.expiresAt) {
		return nil, validationDomain.ErrSubmissionNotFound
	}
	return append([]byte(nil), item.value...), nil
}

// Delete removes key.
func (m *MemorySubmissionRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// DeleteExpired removes entries whose expiry is at or before now.
func (m *MemorySubmissionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for key, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, live or expired.
func (m *MemorySubmissionRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
