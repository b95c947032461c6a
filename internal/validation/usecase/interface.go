// Package usecase implements form orchestration for the validation module.
//
// The orchestrator gates a submission through the per-user lockout tracker, runs every
// schema field through the sanitize, validate and scan pipeline, records failed attempts,
// and guards against duplicate submissions through a TTL key-value store.
package usecase

import (
	"context"
	"time"

	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
	validationService "github.com/allisson/fieldguard/internal/validation/service"
)

// SubmissionRepository is a TTL key-value store used by the duplicate-submission guard.
// Expired keys behave as absent.
type SubmissionRepository interface {
	// SetIfAbsent stores value under key for ttl when key is absent or expired and reports
	// whether it stored it. The check and the write are atomic.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Get returns the live value under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes every key that expired before now and returns how many it removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// FieldValidator applies one rule to one sanitized value.
type FieldValidator interface {
	Validate(
		ctx context.Context,
		field string,
		value any,
		rule validationDomain.Rule,
	) validationDomain.ValidationResult
}

// FileValidator checks file upload metadata and content.
type FileValidator interface {
	Validate(
		file validationDomain.FileUpload,
		opts validationDomain.FileUploadOptions,
	) validationDomain.ValidationResult
}

// StrengthScorer scores passwords.
type StrengthScorer interface {
	Score(password string) validationDomain.Strength
}

// LockoutTracker counts failed attempts per user and blocks users that exceed the limit.
type LockoutTracker interface {
	CheckRateLimit(userID string) *validationDomain.ValidationError
	BeginAttempt(userID string) (finish func(failed bool), blocked *validationDomain.ValidationError)
	TrackFailedAttempt(userID string)
	ResetUserAttempts(userID string)
	Stats(userID string) validationDomain.AttemptStats
}

// SecurityConfigStore holds the live security configuration.
type SecurityConfigStore interface {
	Get() validationDomain.SecurityConfig
	Set(cfg validationDomain.SecurityConfig) error
}

// ValidationUseCase orchestrates field, form and file validation.
//
// Validation outcomes are returned as results, never as Go errors. Only configuration
// updates return an error.
type ValidationUseCase interface {
	// ValidateForm validates data against schema. When userID is set the lockout tracker
	// gates the call and a failed validation counts as an attempt.
	ValidateForm(
		ctx context.Context,
		data map[string]any,
		schema *validationDomain.Schema,
		userID string,
	) validationDomain.FormResult

	// ValidateField runs one value through every rule in order and then runs the
	// security scanner over the raw value, not the sanitized one.
	ValidateField(
		ctx context.Context,
		field string,
		value any,
		rules []validationDomain.Rule,
	) validationDomain.ValidationResult

	// CheckDuplicateSubmission returns a DUPLICATE_SUBMISSION error when an identical
	// payload was seen inside the submission window.
	CheckDuplicateSubmission(ctx context.Context, data map[string]any) *validationDomain.ValidationError

	// ValidateFileUpload checks size, type, extension and content of an upload.
	ValidateFileUpload(
		ctx context.Context,
		file validationDomain.FileUpload,
		opts validationDomain.FileUploadOptions,
	) validationDomain.ValidationResult

	// PasswordStrength scores a password.
	PasswordStrength(ctx context.Context, password string) validationDomain.Strength

	// ResetUserAttempts clears a user's attempt count and lockout.
	ResetUserAttempts(ctx context.Context, userID string)

	// LockoutStats returns a snapshot of a user's attempt state.
	LockoutStats(ctx context.Context, userID string) validationDomain.AttemptStats

	// SecurityConfig returns the live security configuration.
	SecurityConfig(ctx context.Context) validationDomain.SecurityConfig

	// UpdateSecurityConfig validates and replaces the live security configuration.
	UpdateSecurityConfig(ctx context.Context, cfg validationDomain.SecurityConfig) error
}

var (
	_ FieldValidator      = (*validationService.FieldValidator)(nil)
	_ FileValidator       = (*validationService.FileValidator)(nil)
	_ StrengthScorer      = (*validationService.StrengthScorer)(nil)
	_ LockoutTracker      = (*validationService.LockoutTracker)(nil)
	_ SecurityConfigStore = (*validationService.SecurityConfigStore)(nil)
)
