package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
	validationService "github.com/allisson/fieldguard/internal/validation/service"
)

// DefaultSubmissionWindow is how long an identical payload counts as a duplicate.
const DefaultSubmissionWindow = 5 * time.Second

const duplicateMessage = "Duplicate submission detected. Please wait before submitting again"

// Options tunes the orchestrator. Zero values select the defaults.
type Options struct {
	// SubmissionWindow is the duplicate-submission TTL.
	SubmissionWindow time.Duration

	// MaxConcurrency bounds how many fields of one form are validated at once.
	// Zero means unbounded.
	MaxConcurrency int
}

// validationUseCase implements ValidationUseCase.
type validationUseCase struct {
	validator   FieldValidator
	scanner     validationService.Scanner
	scorer      StrengthScorer
	files       FileValidator
	tracker     LockoutTracker
	config      SecurityConfigStore
	submissions SubmissionRepository
	logger      *slog.Logger
	opts        Options
	now         func() time.Time
}

// NewValidationUseCase creates a ValidationUseCase.
func NewValidationUseCase(
	validator FieldValidator,
	scanner validationService.Scanner,
	scorer StrengthScorer,
	files FileValidator,
	tracker LockoutTracker,
	config SecurityConfigStore,
	submissions SubmissionRepository,
	logger *slog.Logger,
	opts Options,
) ValidationUseCase {
	if opts.SubmissionWindow <= 0 {
		opts.SubmissionWindow = DefaultSubmissionWindow
	}
	return &validationUseCase{
		validator:   validator,
		scanner:     scanner,
		scorer:      scorer,
		files:       files,
		tracker:     tracker,
		config:      config,
		submissions: submissions,
		logger:      logger,
		opts:        opts,
		now:         time.Now,
	}
}

// ValidateForm gates on the lockout tracker, validates every schema field and records a
// failed attempt for userID when any field fails. The gate and the attempt reservation are
// taken together, so concurrent submissions for one user cannot overrun MaxAttempts.
func (v *validationUseCase) ValidateForm(
	ctx context.Context,
	data map[string]any,
	schema *validationDomain.Schema,
	userID string,
) validationDomain.FormResult {
	result := validationDomain.NewFormResult()

	finish := func(bool) {}
	if userID != "" {
		var limited *validationDomain.ValidationError
		finish, limited = v.tracker.BeginAttempt(userID)
		if limited != nil {
			result.Errors = append(result.Errors, *limited)
			result.IsValid = false
			v.logger.Info("form validation rate limited",
				slog.String("user_id", userID),
				slog.String("code", string(limited.Code)),
			)
			return result
		}
	}

	if schema == nil {
		finish(false)
		return result
	}

	fields := schema.Fields()
	results := make([]validationDomain.ValidationResult, len(fields))

	var g errgroup.Group
	if v.opts.MaxConcurrency > 0 {
		g.SetLimit(v.opts.MaxConcurrency)
	}
	for i, field := range fields {
		g.Go(func() error {
			results[i] = v.ValidateField(ctx, field.Name, data[field.Name], field.Rules)
			return nil
		})
	}
	_ = g.Wait()

	for i, field := range fields {
		result.Merge(field.Name, results[i])
	}

	finish(!result.IsValid)

	return result
}

// ValidateField sanitizes and validates value against each rule in turn, threading the
// sanitized output of one rule into the next, then scans the raw input. The scanner never
// sees the sanitized value, so a payload the sanitizer strips still fails the field even
// though SanitizedValue comes back clean.
func (v *validationUseCase) ValidateField(
	ctx context.Context,
	field string,
	value any,
	rules []validationDomain.Rule,
) validationDomain.ValidationResult {
	result := validationDomain.NewValidationResult(value)

	current := value
	for _, rule := range rules {
		ruleResult := v.validator.Validate(ctx, field, validationService.Sanitize(current, rule), rule)
		result.Errors = append(result.Errors, ruleResult.Errors...)
		result.Warnings = append(result.Warnings, ruleResult.Warnings...)
		current = ruleResult.SanitizedValue
	}
	result.SanitizedValue = current

	if raw, ok := value.(string); ok && v.scanner != nil {
		findings := v.scanner.Scan(field, raw, v.config.Get())
		for _, e := range findings.Errors {
			v.logger.Warn("security check failed",
				slog.String("field", field),
				slog.String("code", string(e.Code)),
				slog.String("severity", string(e.Severity)),
			)
		}
		result.Errors = append(result.Errors, findings.Errors...)
		result.Warnings = append(result.Warnings, findings.Warnings...)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// CheckDuplicateSubmission hashes the canonical JSON of data and claims the hash in the
// submission store. Store failures are logged and the submission is let through.
func (v *validationUseCase) CheckDuplicateSubmission(
	ctx context.Context,
	data map[string]any,
) *validationDomain.ValidationError {
	// encoding/json sorts map keys, so equal payloads encode identically.
	payload, err := json.Marshal(data)
	if err != nil {
		v.logger.Warn("failed to encode submission payload", slog.Any("error", err))
		return nil
	}

	key := SubmissionKey(payload)
	stored, err := v.submissions.SetIfAbsent(
		ctx,
		key,
		[]byte(v.now().UTC().Format(time.RFC3339Nano)),
		v.opts.SubmissionWindow,
	)
	if err != nil {
		v.logger.Error("failed to record submission", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	if stored {
		return nil
	}

	v.logger.Info("duplicate submission rejected", slog.String("key", key))
	return &validationDomain.ValidationError{
		Field:    validationService.FormField,
		Kind:     validationDomain.KindSubmission,
		Message:  duplicateMessage,
		Code:     validationDomain.CodeDuplicateSubmission,
		Severity: validationDomain.SeverityMedium,
	}
}

// ValidateFileUpload validates an upload.
func (v *validationUseCase) ValidateFileUpload(
	ctx context.Context,
	file validationDomain.FileUpload,
	opts validationDomain.FileUploadOptions,
) validationDomain.ValidationResult {
	result := v.files.Validate(file, opts)
	if result.HasCode(validationDomain.CodeDangerousFileExtension) ||
		result.HasCode(validationDomain.CodeFileContentMismatch) {
		v.logger.Warn("file upload rejected",
			slog.String("file_name", fmt.Sprint(result.SanitizedValue)),
			slog.Int64("size", file.Size),
		)
	}
	return result
}

// PasswordStrength scores password.
func (v *validationUseCase) PasswordStrength(ctx context.Context, password string) validationDomain.Strength {
	return v.scorer.Score(password)
}

// ResetUserAttempts clears userID's attempts and lockout.
func (v *validationUseCase) ResetUserAttempts(ctx context.Context, userID string) {
	v.tracker.ResetUserAttempts(userID)
	v.logger.Info("user attempts reset", slog.String("user_id", userID))
}

// LockoutStats returns userID's attempt snapshot.
func (v *validationUseCase) LockoutStats(ctx context.Context, userID string) validationDomain.AttemptStats {
	return v.tracker.Stats(userID)
}

// SecurityConfig returns the live configuration.
func (v *validationUseCase) SecurityConfig(ctx context.Context) validationDomain.SecurityConfig {
	return v.config.Get()
}

// UpdateSecurityConfig replaces the live configuration.
func (v *validationUseCase) UpdateSecurityConfig(ctx context.Context, cfg validationDomain.SecurityConfig) error {
	if err := v.config.Set(cfg); err != nil {
		return err
	}
	v.logger.Info("security config updated",
		slog.Int("max_attempts", cfg.MaxAttempts),
		slog.Duration("block_duration", cfg.BlockDuration),
	)
	return nil
}

// SubmissionKey derives the store key for an encoded payload.
func SubmissionKey(payload []byte) string {
	return fmt.Sprintf("submission:%016x", xxhash.Sum64(payload))
}

// RunSubmissionCleanup purges expired submissions every interval until ctx is done.
func RunSubmissionCleanup(
	ctx context.Context,
	repo SubmissionRepository,
	interval time.Duration,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				logger.Error("failed to purge expired submissions", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				logger.Debug("purged expired submissions", slog.Int64("count", removed))
			}
		}
	}
}
