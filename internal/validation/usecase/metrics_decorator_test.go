package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/fieldguard/internal/metrics"
	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
	validationMocks "github.com/allisson/fieldguard/internal/validation/usecase/mocks"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectMetrics(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "validation", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "validation", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

// TestNewValidationUseCaseWithMetrics tests the metrics decorator constructor.
func TestNewValidationUseCaseWithMetrics(t *testing.T) {
	t.Parallel()

	decorator := NewValidationUseCaseWithMetrics(&validationMocks.MockValidationUseCase{}, &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*ValidationUseCase)(nil), decorator)
}

// TestMetricsDecorator_ValidateForm tests the ValidateForm method with metrics.
func TestMetricsDecorator_ValidateForm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	schema := validationDomain.LoginSchema()
	data := map[string]any{"email": "a@b.co"}

	invalid := validationDomain.NewFormResult()
	invalid.Merge("email", validationDomain.ValidationResult{
		Errors: []validationDomain.ValidationError{{Field: "email", Code: validationDomain.CodeInvalidEmail}},
	})

	locked := validationDomain.NewFormResult()
	locked.Errors = []validationDomain.ValidationError{{Field: "form", Code: validationDomain.CodeAccountLocked}}
	locked.IsValid = false

	tests := []struct {
		name   string
		result validationDomain.FormResult
		status string
	}{
		{"Valid_RecordsValid", validationDomain.NewFormResult(), "valid"},
		{"Invalid_RecordsInvalid", invalid, "invalid"},
		{"Locked_RecordsRateLimited", locked, "rate_limited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mockUseCase := &validationMocks.MockValidationUseCase{}
			mockMetrics := &mockBusinessMetrics{}

			mockUseCase.On("ValidateForm", ctx, data, schema, "u").Return(tt.result).Once()
			expectMetrics(mockMetrics, ctx, "form_validate", tt.status)

			decorator := NewValidationUseCaseWithMetrics(mockUseCase, mockMetrics)
			result := decorator.ValidateForm(ctx, data, schema, "u")

			assert.Equal(t, tt.result, result)
			mockUseCase.AssertExpectations(t)
			mockMetrics.AssertExpectations(t)
		})
	}
}

// TestMetricsDecorator_ValidateField tests the ValidateField method with metrics.
func TestMetricsDecorator_ValidateField(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rules := []validationDomain.Rule{{Kind: validationDomain.KindEmail}}

	mockUseCase := &validationMocks.MockValidationUseCase{}
	mockMetrics := &mockBusinessMetrics{}

	expected := validationDomain.NewValidationResult("a@b.co")
	mockUseCase.On("ValidateField", ctx, "email", "a@b.co", rules).Return(expected).Once()
	expectMetrics(mockMetrics, ctx, "field_validate", "valid")

	decorator := NewValidationUseCaseWithMetrics(mockUseCase, mockMetrics)
	assert.Equal(t, expected, decorator.ValidateField(ctx, "email", "a@b.co", rules))
	mockMetrics.AssertExpectations(t)
}

// TestMetricsDecorator_CheckDuplicateSubmission tests the duplicate guard with metrics.
func TestMetricsDecorator_CheckDuplicateSubmission(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	data := map[string]any{"amount": "1.00"}

	t.Run("Unique_RecordsUnique", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &validationMocks.MockValidationUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("CheckDuplicateSubmission", ctx, data).Return(nil).Once()
		expectMetrics(mockMetrics, ctx, "duplicate_check", "unique")

		decorator := NewValidationUseCaseWithMetrics(mockUseCase, mockMetrics)
		assert.Nil(t, decorator.CheckDuplicateSubmission(ctx, data))
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Duplicate_RecordsDuplicate", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &validationMocks.MockValidationUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		dup := &validationDomain.ValidationError{Field: "form", Code: validationDomain.CodeDuplicateSubmission}
		mockUseCase.On("CheckDuplicateSubmission", ctx, data).Return(dup).Once()
		expectMetrics(mockMetrics, ctx, "duplicate_check", "duplicate")

		decorator := NewValidationUseCaseWithMetrics(mockUseCase, mockMetrics)
		assert.Equal(t, dup, decorator.CheckDuplicateSubmission(ctx, data))
		mockMetrics.AssertExpectations(t)
	})
}

// TestMetricsDecorator_ValidateFileUpload tests the file validation path with metrics.
func TestMetricsDecorator_ValidateFileUpload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	file := validationDomain.FileUpload{Name: "a.exe", Size: 1}
	opts := validationDomain.FileUploadOptions{}

	mockUseCase := &validationMocks.MockValidationUseCase{}
	mockMetrics := &mockBusinessMetrics{}

	expected := validationDomain.NewValidationResult("a.exe")
	expected.AddError(validationDomain.ValidationError{Code: validationDomain.CodeDangerousFileExtension})
	mockUseCase.On("ValidateFileUpload", ctx, file, opts).Return(expected).Once()
	expectMetrics(mockMetrics, ctx, "file_validate", "invalid")

	decorator := NewValidationUseCaseWithMetrics(mockUseCase, mockMetrics)
	assert.Equal(t, expected, decorator.ValidateFileUpload(ctx, file, opts))
	mockMetrics.AssertExpectations(t)
}

// TestMetricsDecorator_ResetUserAttempts tests attempt resets with metrics.
func TestMetricsDecorator_ResetUserAttempts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mockUseCase := &validationMocks.MockValidationUseCase{}
	mockMetrics := &mockBusinessMetrics{}

	mockUseCase.On("ResetUserAttempts", ctx, "u").Return().Once()
	expectMetrics(mockMetrics, ctx, "reset_attempts", "success")

	decorator := NewValidationUseCaseWithMetrics(mockUseCase, mockMetrics)
	decorator.ResetUserAttempts(ctx, "u")

	mockUseCase.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}

// TestMetricsDecorator_PassThrough tests that read-only methods are not instrumented.
func TestMetricsDecorator_PassThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mockUseCase := &validationMocks.MockValidationUseCase{}
	mockMetrics := &mockBusinessMetrics{}

	strength := validationDomain.Strength{Score: 6, Feedback: validationDomain.StrengthStrong, Suggestions: []string{}}
	cfg := validationDomain.DefaultSecurityConfig()
	stats := validationDomain.AttemptStats{UserID: "u", Attempts: 2}

	mockUseCase.On("PasswordStrength", ctx, "pw").Return(strength).Once()
	mockUseCase.On("SecurityConfig", ctx).Return(cfg).Once()
	mockUseCase.On("UpdateSecurityConfig", ctx, cfg).Return(nil).Once()
	mockUseCase.On("LockoutStats", ctx, "u").Return(stats).Once()

	decorator := NewValidationUseCaseWithMetrics(mockUseCase, mockMetrics)
	assert.Equal(t, strength, decorator.PasswordStrength(ctx, "pw"))
	assert.Equal(t, cfg, decorator.SecurityConfig(ctx))
	assert.NoError(t, decorator.UpdateSecurityConfig(ctx, cfg))
	assert.Equal(t, stats, decorator.LockoutStats(ctx, "u"))

	mockUseCase.AssertExpectations(t)
	mockMetrics.AssertNotCalled(t, "RecordOperation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// findingMetrics also implements metrics.FindingRecorder.
type findingMetrics struct {
	mockBusinessMetrics
}

func (m *findingMetrics) RecordFinding(ctx context.Context, code, severity string) {
	m.Called(ctx, code, severity)
}

var _ metrics.FindingRecorder = (*findingMetrics)(nil)

// TestMetricsDecorator_RecordsSecurityFindings tests that only security-kind errors are counted.
func TestMetricsDecorator_RecordsSecurityFindings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	schema := validationDomain.LoginSchema()
	data := map[string]any{"email": "' OR 1=1 --"}

	result := validationDomain.NewFormResult()
	result.Merge("email", validationDomain.ValidationResult{
		Errors: []validationDomain.ValidationError{
			{Field: "email", Kind: validationDomain.KindEmail, Code: validationDomain.CodeInvalidEmail},
			{
				Field:    "email",
				Kind:     validationDomain.KindSecurity,
				Code:     validationDomain.CodeSQLInjectionDetected,
				Severity: validationDomain.SeverityCritical,
			},
		},
	})

	mockUseCase := &validationMocks.MockValidationUseCase{}
	mockMetrics := &findingMetrics{}

	mockUseCase.On("ValidateForm", ctx, data, schema, "").Return(result).Once()
	expectMetrics(&mockMetrics.mockBusinessMetrics, ctx, "form_validate", "invalid")
	mockMetrics.On("RecordFinding", ctx, "SQL_INJECTION_DETECTED", "critical").Return().Once()

	decorator := NewValidationUseCaseWithMetrics(mockUseCase, mockMetrics)
	decorator.ValidateForm(ctx, data, schema, "")

	mockMetrics.AssertExpectations(t)
	mockMetrics.AssertNumberOfCalls(t, "RecordFinding", 1)
}
