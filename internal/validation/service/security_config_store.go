package service

import (
	"sync"

	"github.com/allisson/fieldguard/internal/validation/domain"
)

// ConfigProvider returns the live security configuration.
type ConfigProvider interface {
	Get() domain.SecurityConfig
}

// SecurityConfigStore holds the process-wide SecurityConfig. Readers always see a
// complete snapshot.
type SecurityConfigStore struct {
	mu  sync.RWMutex
	cfg domain.SecurityConfig
}

// NewSecurityConfigStore creates a store holding cfg. cfg must pass Validate.
func NewSecurityConfigStore(cfg domain.SecurityConfig) (*SecurityConfigStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SecurityConfigStore{cfg: cfg}, nil
}

// Get returns a copy of the current configuration.
func (s *SecurityConfigStore) Get() domain.SecurityConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set replaces the configuration after validating it.
func (s *SecurityConfigStore) Set(cfg domain.SecurityConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}
