package domain

import (
	"fmt"
	"time"

	validation "github.com/jellydator/validation"
)

// Default security settings.
const (
	DefaultMaxAttempts   = 5
	DefaultBlockDuration = 30 * time.Minute
)

// SecurityConfig toggles each security-check category and sets lockout parameters.
// A single instance is shared by all validation calls of a process.
type SecurityConfig struct {
	EnableSQLInjectionCheck     bool
	EnableXSSCheck              bool
	EnableCommandInjectionCheck bool
	EnablePathTraversalCheck    bool
	EnableNoSQLInjectionCheck   bool
	EnableNullByteCheck         bool
	EnableXMLInjectionCheck     bool
	EnableHomographCheck        bool
	EnableSensitiveDataCheck    bool
	EnableProfanityCheck        bool
	EnableRateLimiting          bool

	// MaxAttempts is the number of failed validations that triggers a lockout.
	MaxAttempts int
	// BlockDuration is both the lockout length and the attempt-counting window.
	BlockDuration time.Duration
}

// DefaultSecurityConfig returns a config with every check enabled and default limits.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableSQLInjectionCheck:     true,
		EnableXSSCheck:              true,
		EnableCommandInjectionCheck: true,
		EnablePathTraversalCheck:    true,
		EnableNoSQLInjectionCheck:   true,
		EnableNullByteCheck:         true,
		EnableXMLInjectionCheck:     true,
		EnableHomographCheck:        true,
		EnableSensitiveDataCheck:    true,
		EnableProfanityCheck:        true,
		EnableRateLimiting:          true,
		MaxAttempts:                 DefaultMaxAttempts,
		BlockDuration:               DefaultBlockDuration,
	}
}

// Validate checks the lockout parameters.
func (c *SecurityConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.MaxAttempts, validation.Required, validation.Min(1), validation.Max(1000)),
		validation.Field(&c.BlockDuration,
			validation.Required,
			validation.Min(time.Second),
			validation.Max(30*24*time.Hour),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSecurityConfig, err)
	}
	return nil
}
