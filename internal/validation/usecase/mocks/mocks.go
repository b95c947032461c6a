// Package mocks provides mock implementations of the validation use case interfaces for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
)

// MockValidationUseCase is a mock implementation of ValidationUseCase.
type MockValidationUseCase struct {
	mock.Mock
}

// ValidateForm mocks the ValidateForm method.
func (m *MockValidationUseCase) ValidateForm(
	ctx context.Context,
	data map[string]any,
	schema *validationDomain.Schema,
	userID string,
) validationDomain.FormResult {
	args := m.Called(ctx, data, schema, userID)
	return args.Get(0).(validationDomain.FormResult)
}

// ValidateField mocks the ValidateField method.
func (m *MockValidationUseCase) ValidateField(
	ctx context.Context,
	field string,
	value any,
	rules []validationDomain.Rule,
) validationDomain.ValidationResult {
	args := m.Called(ctx, field, value, rules)
	return args.Get(0).(validationDomain.ValidationResult)
}

// CheckDuplicateSubmission mocks the CheckDuplicateSubmission method.
func (m *MockValidationUseCase) CheckDuplicateSubmission(
	ctx context.Context,
	data map[string]any,
) *validationDomain.ValidationError {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*validationDomain.ValidationError)
}

// ValidateFileUpload mocks the ValidateFileUpload method.
func (m *MockValidationUseCase) ValidateFileUpload(
	ctx context.Context,
	file validationDomain.FileUpload,
	opts validationDomain.FileUploadOptions,
) validationDomain.ValidationResult {
	args := m.Called(ctx, file, opts)
	return args.Get(0).(validationDomain.ValidationResult)
}

// PasswordStrength mocks the PasswordStrength method.
func (m *MockValidationUseCase) PasswordStrength(ctx context.Context, password string) validationDomain.Strength {
	args := m.Called(ctx, password)
	return args.Get(0).(validationDomain.Strength)
}

// ResetUserAttempts mocks the ResetUserAttempts method.
func (m *MockValidationUseCase) ResetUserAttempts(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

// LockoutStats mocks the LockoutStats method.
func (m *MockValidationUseCase) LockoutStats(ctx context.Context, userID string) validationDomain.AttemptStats {
	args := m.Called(ctx, userID)
	return args.Get(0).(validationDomain.AttemptStats)
}

// SecurityConfig mocks the SecurityConfig method.
func (m *MockValidationUseCase) SecurityConfig(ctx context.Context) validationDomain.SecurityConfig {
	args := m.Called(ctx)
	return args.Get(0).(validationDomain.SecurityConfig)
}

// UpdateSecurityConfig mocks the UpdateSecurityConfig method.
func (m *MockValidationUseCase) UpdateSecurityConfig(ctx context.Context, cfg validationDomain.SecurityConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository.
type MockSubmissionRepository struct {
	mock.Mock
}

// SetIfAbsent mocks the SetIfAbsent method.
func (m *MockSubmissionRepository) SetIfAbsent(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

// Get mocks the Get method.
func (m *MockSubmissionRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockSubmissionRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// DeleteExpired mocks the DeleteExpired method.
func (m *MockSubmissionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
