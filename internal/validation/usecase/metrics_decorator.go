package usecase

import (
	"context"
	"time"

	"github.com/allisson/fieldguard/internal/metrics"
	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
)

const metricsDomain = "validation"

// validationUseCaseWithMetrics decorates ValidationUseCase with metrics instrumentation.
type validationUseCaseWithMetrics struct {
	next    ValidationUseCase
	metrics metrics.BusinessMetrics
}

// NewValidationUseCaseWithMetrics wraps a ValidationUseCase with metrics recording.
func NewValidationUseCaseWithMetrics(useCase ValidationUseCase, m metrics.BusinessMetrics) ValidationUseCase {
	return &validationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (v *validationUseCaseWithMetrics) record(ctx context.Context, operation, status string, start time.Time) {
	v.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	v.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// recordFindings counts security-kind errors when the metrics backend supports it.
func (v *validationUseCaseWithMetrics) recordFindings(ctx context.Context, errs []validationDomain.ValidationError) {
	recorder, ok := v.metrics.(metrics.FindingRecorder)
	if !ok {
		return
	}
	for _, e := range errs {
		if e.Kind == validationDomain.KindSecurity {
			recorder.RecordFinding(ctx, string(e.Code), string(e.Severity))
		}
	}
}

func validity(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}

// ValidateForm records metrics for form validation.
func (v *validationUseCaseWithMetrics) ValidateForm(
	ctx context.Context,
	data map[string]any,
	schema *validationDomain.Schema,
	userID string,
) validationDomain.FormResult {
	start := time.Now()
	result := v.next.ValidateForm(ctx, data, schema, userID)

	status := validity(result.IsValid)
	if result.HasCode(validationDomain.CodeRateLimitExceeded) || result.HasCode(validationDomain.CodeAccountLocked) {
		status = "rate_limited"
	}

	v.record(ctx, "form_validate", status, start)
	v.recordFindings(ctx, result.Errors)
	return result
}

// ValidateField records metrics for single field validation.
func (v *validationUseCaseWithMetrics) ValidateField(
	ctx context.Context,
	field string,
	value any,
	rules []validationDomain.Rule,
) validationDomain.ValidationResult {
	start := time.Now()
	result := v.next.ValidateField(ctx, field, value, rules)
	v.record(ctx, "field_validate", validity(result.IsValid), start)
	v.recordFindings(ctx, result.Errors)
	return result
}

// CheckDuplicateSubmission records metrics for the duplicate-submission guard.
func (v *validationUseCaseWithMetrics) CheckDuplicateSubmission(
	ctx context.Context,
	data map[string]any,
) *validationDomain.ValidationError {
	start := time.Now()
	dup := v.next.CheckDuplicateSubmission(ctx, data)

	status := "unique"
	if dup != nil {
		status = "duplicate"
	}

	v.record(ctx, "duplicate_check", status, start)
	return dup
}

// ValidateFileUpload records metrics for file validation.
func (v *validationUseCaseWithMetrics) ValidateFileUpload(
	ctx context.Context,
	file validationDomain.FileUpload,
	opts validationDomain.FileUploadOptions,
) validationDomain.ValidationResult {
	start := time.Now()
	result := v.next.ValidateFileUpload(ctx, file, opts)
	v.record(ctx, "file_validate", validity(result.IsValid), start)
	return result
}

// PasswordStrength delegates without recording.
func (v *validationUseCaseWithMetrics) PasswordStrength(
	ctx context.Context,
	password string,
) validationDomain.Strength {
	return v.next.PasswordStrength(ctx, password)
}

// ResetUserAttempts records metrics for attempt resets.
func (v *validationUseCaseWithMetrics) ResetUserAttempts(ctx context.Context, userID string) {
	start := time.Now()
	v.next.ResetUserAttempts(ctx, userID)
	v.record(ctx, "reset_attempts", "success", start)
}

// LockoutStats delegates without recording.
func (v *validationUseCaseWithMetrics) LockoutStats(
	ctx context.Context,
	userID string,
) validationDomain.AttemptStats {
	return v.next.LockoutStats(ctx, userID)
}

// SecurityConfig delegates without recording.
func (v *validationUseCaseWithMetrics) SecurityConfig(ctx context.Context) validationDomain.SecurityConfig {
	return v.next.SecurityConfig(ctx)
}

// UpdateSecurityConfig delegates without recording.
func (v *validationUseCaseWithMetrics) UpdateSecurityConfig(
	ctx context.Context,
	cfg validationDomain.SecurityConfig,
) error {
	return v.next.UpdateSecurityConfig(ctx, cfg)
}
