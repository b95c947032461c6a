package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
	validationMocks "github.com/allisson/fieldguard/internal/validation/usecase/mocks"
)

func TestRunValidate(t *testing.T) {
	ctx := context.Background()
	data := `{"email":"a@b.co","password":"pw"}`
	values := map[string]any{"email": "a@b.co", "password": "pw"}

	valid := validationDomain.NewFormResult()
	valid.Merge("email", validationDomain.NewValidationResult("a@b.co"))

	invalid := validationDomain.NewFormResult()
	invalid.Merge("password", validationDomain.ValidationResult{
		Errors: []validationDomain.ValidationError{{
			Field:    "password",
			Code:     validationDomain.CodeTooShort,
			Severity: validationDomain.SeverityHigh,
			Message:  "Password must be at least 8 characters",
		}},
	})

	t.Run("valid-text", func(t *testing.T) {
		mockUseCase := &validationMocks.MockValidationUseCase{}
		mockUseCase.On("ValidateForm", ctx, values, mock.AnythingOfType("*domain.Schema"), "").Return(valid).Once()

		var out bytes.Buffer
		require.NoError(t, RunValidate(ctx, mockUseCase, &out, "login", data, "", "text"))

		assert.Contains(t, out.String(), "Result: valid")
		assert.Contains(t, out.String(), "email: a@b.co")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-json", func(t *testing.T) {
		mockUseCase := &validationMocks.MockValidationUseCase{}
		mockUseCase.On("ValidateForm", ctx, values, mock.AnythingOfType("*domain.Schema"), "u-1").Return(invalid).Once()

		var out bytes.Buffer
		err := RunValidate(ctx, mockUseCase, &out, "login", data, "u-1", "json")
		require.ErrorIs(t, err, ErrFormInvalid)

		var body validationDomain.FormResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &body))
		assert.False(t, body.IsValid)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, validationDomain.CodeTooShort, body.Errors[0].Code)
	})

	t.Run("invalid-text-lists-errors", func(t *testing.T) {
		mockUseCase := &validationMocks.MockValidationUseCase{}
		mockUseCase.On("ValidateForm", ctx, values, mock.AnythingOfType("*domain.Schema"), "").Return(invalid).Once()

		var out bytes.Buffer
		err := RunValidate(ctx, mockUseCase, &out, "login", data, "", "text")
		require.ErrorIs(t, err, ErrFormInvalid)
		assert.Contains(t, out.String(), "password [TOO_SHORT, high]")
	})

	t.Run("unknown-schema", func(t *testing.T) {
		mockUseCase := &validationMocks.MockValidationUseCase{}

		err := RunValidate(ctx, mockUseCase, &bytes.Buffer{}, "nope", data, "", "text")
		require.ErrorIs(t, err, validationDomain.ErrSchemaNotFound)
		assert.Contains(t, err.Error(), "available: login")
	})

	t.Run("malformed-data", func(t *testing.T) {
		mockUseCase := &validationMocks.MockValidationUseCase{}

		err := RunValidate(ctx, mockUseCase, &bytes.Buffer{}, "login", "[1,2]", "", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JSON object")
	})
}

func TestRunPasswordStrength(t *testing.T) {
	ctx := context.Background()
	weak := validationDomain.Strength{
		Score:       1,
		Feedback:    validationDomain.StrengthVeryWeak,
		Suggestions: []string{"Use at least 8 characters"},
	}

	t.Run("text", func(t *testing.T) {
		mockUseCase := &validationMocks.MockValidationUseCase{}
		mockUseCase.On("PasswordStrength", ctx, "abc").Return(weak).Once()

		var out bytes.Buffer
		require.NoError(t, RunPasswordStrength(ctx, mockUseCase, &out, "abc", "text"))
		assert.Equal(t, "Score: 1 (very weak)\n  - Use at least 8 characters\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		mockUseCase := &validationMocks.MockValidationUseCase{}
		mockUseCase.On("PasswordStrength", ctx, "abc").Return(weak).Once()

		var out bytes.Buffer
		require.NoError(t, RunPasswordStrength(ctx, mockUseCase, &out, "abc", "json"))

		var body validationDomain.Strength
		require.NoError(t, json.Unmarshal(out.Bytes(), &body))
		assert.Equal(t, weak, body)
	})
}
