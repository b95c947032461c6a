package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
	validationService "github.com/allisson/fieldguard/internal/validation/service"
	validationMocks "github.com/allisson/fieldguard/internal/validation/usecase/mocks"
)

type fakeEncrypter struct {
	err error
}

func (f fakeEncrypter) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "v1:" + plaintext, nil
}

type testDeps struct {
	useCase     ValidationUseCase
	tracker     *validationService.LockoutTracker
	config      *validationService.SecurityConfigStore
	submissions *validationMocks.MockSubmissionRepository
}

func newTestUseCase(t *testing.T, cfg validationDomain.SecurityConfig) testDeps {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	patterns := validationService.DefaultPatternLibrary()
	scorer := validationService.NewStrengthScorer(patterns)

	store, err := validationService.NewSecurityConfigStore(cfg)
	require.NoError(t, err)

	tracker := validationService.NewLockoutTracker(store, time.Now, logger)
	submissions := &validationMocks.MockSubmissionRepository{}

	uc := NewValidationUseCase(
		validationService.NewFieldValidator(patterns, scorer, fakeEncrypter{}, logger),
		validationService.NewRegexScanner(patterns),
		scorer,
		validationService.NewFileValidator(patterns),
		tracker,
		store,
		submissions,
		logger,
		Options{MaxConcurrency: 4},
	)

	return testDeps{useCase: uc, tracker: tracker, config: store, submissions: submissions}
}

func codes(errs []validationDomain.ValidationError) []validationDomain.Code {
	out := make([]validationDomain.Code, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestValidationUseCase_ValidateForm_Login(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())

	result := deps.useCase.ValidateForm(context.Background(), map[string]any{
		"email":    "  John.Doe@Example.COM ",
		"password": "Zq7!mWx9pL2v",
	}, validationDomain.LoginSchema(), "user-1")

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, map[string]any{
		"email":    "john.doe@example.com",
		"password": "Zq7!mWx9pL2v",
	}, result.SanitizedData)
	assert.Equal(t, 0, deps.tracker.Stats("user-1").Attempts)
}

func TestValidationUseCase_ValidateForm_DeclarationOrder(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())

	result := deps.useCase.ValidateForm(context.Background(), map[string]any{},
		validationDomain.RegistrationSchema(), "")

	require.False(t, result.IsValid)
	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		assert.Equal(t, validationDomain.CodeRequired, e.Code)
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"firstName", "lastName", "email", "phone", "password", "pin"}, fields)
	assert.Len(t, result.SanitizedData, 6)
}

func TestValidationUseCase_ValidateForm_Payment(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())

	t.Run("valid", func(t *testing.T) {
		result := deps.useCase.ValidateForm(context.Background(), map[string]any{
			"amount":      "150.5",
			"recipient":   "  Jane Smith ",
			"description": "Rent for March",
		}, validationDomain.PaymentSchema(), "")

		assert.True(t, result.IsValid)
		assert.Equal(t, "150.50", result.SanitizedData["amount"])
		assert.Equal(t, "Jane Smith", result.SanitizedData["recipient"])
	})

	t.Run("sql injection in description", func(t *testing.T) {
		result := deps.useCase.ValidateForm(context.Background(), map[string]any{
			"amount":      "10",
			"recipient":   "Jane Smith",
			"description": "'; DROP TABLE users;--",
		}, validationDomain.PaymentSchema(), "payer")

		require.False(t, result.IsValid)
		assert.Equal(t, []validationDomain.Code{validationDomain.CodeSQLInjectionDetected}, codes(result.Errors))
		assert.Equal(t, "description", result.Errors[0].Field)
		assert.Equal(t, validationDomain.SeverityCritical, result.Errors[0].Severity)
		assert.Equal(t, "DROP TABLE users--", result.SanitizedData["description"])
		assert.Equal(t, 1, deps.tracker.Stats("payer").Attempts)
	})

	t.Run("amount out of range", func(t *testing.T) {
		result := deps.useCase.ValidateForm(context.Background(), map[string]any{
			"amount":    "2000000",
			"recipient": "Jane Smith",
		}, validationDomain.PaymentSchema(), "")

		assert.Equal(t, []validationDomain.Code{validationDomain.CodeAmountTooHigh}, codes(result.Errors))
	})
}

func TestValidationUseCase_ValidateForm_CreditCard(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
	schema := validationDomain.CreditCardSchemaAt(func() time.Time {
		return time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
	})

	result := deps.useCase.ValidateForm(context.Background(), map[string]any{
		"cardNumber":     "4111 1111 1111 1111",
		"cardholderName": " jane smith ",
		"expiryDate":     "10/26",
		"cvv":            "123",
	}, schema, "")

	assert.True(t, result.IsValid, "%v", result.Errors)
	assert.Equal(t, "4111********1111", result.SanitizedData["cardNumber"])
	assert.Equal(t, "JANE SMITH", result.SanitizedData["cardholderName"])
	assert.Nil(t, result.SanitizedData["cvv"])
	assert.Contains(t, result.SanitizedData, "cvv")
}

func TestValidationUseCase_ValidateForm_ExpiredCard(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
	schema := validationDomain.CreditCardSchemaAt(func() time.Time {
		return time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	})

	result := deps.useCase.ValidateForm(context.Background(), map[string]any{
		"cardNumber":     "4111 1111 1111 1111",
		"cardholderName": "Jane Smith",
		"expiryDate":     "10/26",
		"cvv":            "123",
	}, schema, "")

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "expiryDate", result.Errors[0].Field)
	assert.Equal(t, validationDomain.CodeCustomValidationFailed, result.Errors[0].Code)
	assert.Equal(t, "Card has expired", result.Errors[0].Message)
}

func TestValidationUseCase_ValidateForm_StateLength(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
	fields := map[string]any{
		"street":  "1 Main Street",
		"city":    "Springfield",
		"zipCode": "62701",
		"country": "us",
	}

	for _, tt := range []struct {
		state string
		code  validationDomain.Code
	}{
		{"I", validationDomain.CodeTooShort},
		{"ILL", validationDomain.CodeTooLong},
	} {
		fields["state"] = tt.state
		result := deps.useCase.ValidateForm(context.Background(), fields, validationDomain.AddressSchema(), "")
		assert.Equal(t, []validationDomain.Code{tt.code}, codes(result.Errors), tt.state)
	}

	fields["state"] = " il "
	result := deps.useCase.ValidateForm(context.Background(), fields, validationDomain.AddressSchema(), "")
	assert.True(t, result.IsValid, "%v", result.Errors)
	assert.Equal(t, "IL", result.SanitizedData["state"])
}

func TestValidationUseCase_ValidateForm_Lockout(t *testing.T) {
	cfg := validationDomain.DefaultSecurityConfig()
	cfg.MaxAttempts = 2
	deps := newTestUseCase(t, cfg)
	ctx := context.Background()
	schema := validationDomain.LoginSchema()
	bad := map[string]any{"email": "nope", "password": "x"}

	for i := 0; i < 2; i++ {
		result := deps.useCase.ValidateForm(ctx, bad, schema, "user-2")
		require.False(t, result.IsValid)
		require.False(t, result.HasCode(validationDomain.CodeAccountLocked))
	}

	locked := deps.useCase.ValidateForm(ctx, map[string]any{
		"email":    "john@example.com",
		"password": "Zq7!mWx9pL2v",
	}, schema, "user-2")
	assert.False(t, locked.IsValid)
	assert.Equal(t, []validationDomain.Code{validationDomain.CodeAccountLocked}, codes(locked.Errors))
	assert.Empty(t, locked.SanitizedData, "no field work after the gate trips")

	limited := deps.useCase.ValidateForm(ctx, bad, schema, "user-2")
	assert.Equal(t, []validationDomain.Code{validationDomain.CodeRateLimitExceeded}, codes(limited.Errors))
	assert.Equal(t, 2, deps.useCase.LockoutStats(ctx, "user-2").Attempts, "gated calls are not counted")

	deps.useCase.ResetUserAttempts(ctx, "user-2")
	assert.True(t, deps.useCase.ValidateForm(ctx, map[string]any{
		"email":    "john@example.com",
		"password": "Zq7!mWx9pL2v",
	}, schema, "user-2").IsValid)
}

func TestValidationUseCase_ValidateForm_ConcurrentFailuresStayWithinLimit(t *testing.T) {
	cfg := validationDomain.DefaultSecurityConfig()
	cfg.MaxAttempts = 3
	deps := newTestUseCase(t, cfg)
	ctx := context.Background()
	schema := validationDomain.LoginSchema()
	bad := map[string]any{"email": "nope"}

	for i := 0; i < 2; i++ {
		require.False(t, deps.useCase.ValidateForm(ctx, bad, schema, "c").IsValid)
	}

	var wg sync.WaitGroup
	var passed atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := deps.useCase.ValidateForm(ctx, bad, schema, "c")
			if !result.HasCode(validationDomain.CodeRateLimitExceeded) &&
				!result.HasCode(validationDomain.CodeAccountLocked) {
				passed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), passed.Load(), "only the remaining attempt passes the gate")
	assert.Equal(t, 3, deps.useCase.LockoutStats(ctx, "c").Attempts)
}

func TestValidationUseCase_ValidateForm_AnonymousNotTracked(t *testing.T) {
	cfg := validationDomain.DefaultSecurityConfig()
	cfg.MaxAttempts = 1
	deps := newTestUseCase(t, cfg)

	for i := 0; i < 3; i++ {
		result := deps.useCase.ValidateForm(context.Background(), map[string]any{},
			validationDomain.LoginSchema(), "")
		assert.Equal(t, []validationDomain.Code{validationDomain.CodeRequired, validationDomain.CodeRequired},
			codes(result.Errors))
	}
}

func TestValidationUseCase_ValidateForm_NilSchema(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
	result := deps.useCase.ValidateForm(context.Background(), map[string]any{"x": 1}, nil, "")
	assert.True(t, result.IsValid)
	assert.Empty(t, result.SanitizedData)
}

func TestValidationUseCase_ValidateField(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
	ctx := context.Background()

	t.Run("sanitized value threads across rules", func(t *testing.T) {
		result := deps.useCase.ValidateField(ctx, "phone", " (555) 123-4567 ", []validationDomain.Rule{
			{Kind: validationDomain.KindRequired, Required: true, Trim: true},
			{Kind: validationDomain.KindPhone},
		})
		assert.True(t, result.IsValid)
		assert.Equal(t, "5551234567", result.SanitizedValue)
	})

	t.Run("ssn replaced by ciphertext", func(t *testing.T) {
		result := deps.useCase.ValidateField(ctx, "ssn", "123-45-6789", []validationDomain.Rule{
			{Kind: validationDomain.KindSsn, Required: true},
		})
		assert.True(t, result.IsValid)
		assert.Equal(t, "v1:123456789", result.SanitizedValue)
	})

	t.Run("scanner sees the raw value", func(t *testing.T) {
		result := deps.useCase.ValidateField(ctx, "note", "<script>alert(1)</script>", []validationDomain.Rule{
			{Kind: validationDomain.KindRequired, Sanitize: true},
		})
		assert.False(t, result.IsValid)
		assert.Equal(t, []validationDomain.Code{validationDomain.CodeXSSDetected}, codes(result.Errors))
		assert.Equal(t, "alert(1)", result.SanitizedValue)
	})

	t.Run("stripped entity declaration still fails", func(t *testing.T) {
		result := deps.useCase.ValidateField(ctx, "note", `<!ENTITY xxe SYSTEM "file:///etc/passwd">`, []validationDomain.Rule{
			{Kind: validationDomain.KindRequired, Sanitize: true},
		})
		assert.False(t, result.IsValid)
		assert.Contains(t, codes(result.Errors), validationDomain.CodeXMLInjectionDetected)
		assert.NotContains(t, result.SanitizedValue, "<")
	})

	t.Run("disabled checks skip scanning", func(t *testing.T) {
		cfg := deps.config.Get()
		cfg.EnableXSSCheck = false
		require.NoError(t, deps.useCase.UpdateSecurityConfig(ctx, cfg))
		defer func() {
			require.NoError(t, deps.useCase.UpdateSecurityConfig(ctx, validationDomain.DefaultSecurityConfig()))
		}()

		result := deps.useCase.ValidateField(ctx, "note", "<script>alert(1)</script>", []validationDomain.Rule{
			{Kind: validationDomain.KindRequired},
		})
		assert.True(t, result.IsValid)
	})

	t.Run("non string values are not scanned", func(t *testing.T) {
		result := deps.useCase.ValidateField(ctx, "amount", 12.5, []validationDomain.Rule{
			{Kind: validationDomain.KindAmount},
		})
		assert.True(t, result.IsValid)
		assert.Equal(t, "12.50", result.SanitizedValue)
	})
}

func TestValidationUseCase_CheckDuplicateSubmission(t *testing.T) {
	ctx := context.Background()
	data := map[string]any{"amount": "10.00", "recipient": "Jane"}
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	key := SubmissionKey(payload)

	t.Run("first submission passes", func(t *testing.T) {
		deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
		deps.submissions.On("SetIfAbsent", ctx, key, mock.Anything, DefaultSubmissionWindow).
			Return(true, nil).
			Once()

		assert.Nil(t, deps.useCase.CheckDuplicateSubmission(ctx, data))
		deps.submissions.AssertExpectations(t)
	})

	t.Run("repeat inside window is rejected", func(t *testing.T) {
		deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
		deps.submissions.On("SetIfAbsent", ctx, key, mock.Anything, DefaultSubmissionWindow).
			Return(false, nil).
			Once()

		dup := deps.useCase.CheckDuplicateSubmission(ctx, data)
		require.NotNil(t, dup)
		assert.Equal(t, validationDomain.CodeDuplicateSubmission, dup.Code)
		assert.Equal(t, validationDomain.KindSubmission, dup.Kind)
		assert.Equal(t, validationService.FormField, dup.Field)
	})

	t.Run("store failure fails open", func(t *testing.T) {
		deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
		deps.submissions.On("SetIfAbsent", ctx, key, mock.Anything, DefaultSubmissionWindow).
			Return(false, errors.New("connection refused")).
			Once()

		assert.Nil(t, deps.useCase.CheckDuplicateSubmission(ctx, data))
	})

	t.Run("unencodable payload fails open", func(t *testing.T) {
		deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
		assert.Nil(t, deps.useCase.CheckDuplicateSubmission(ctx, map[string]any{"ch": make(chan int)}))
		deps.submissions.AssertNotCalled(t, "SetIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSubmissionKey(t *testing.T) {
	a, err := json.Marshal(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	b, err := json.Marshal(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	assert.Equal(t, SubmissionKey(a), SubmissionKey(b))
	assert.NotEqual(t, SubmissionKey(a), SubmissionKey([]byte(`{"a":1}`)))
	assert.Regexp(t, `^submission:[0-9a-f]{16}$`, SubmissionKey(a))
}

func TestValidationUseCase_ValidateFileUpload(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())

	result := deps.useCase.ValidateFileUpload(context.Background(),
		validationDomain.FileUpload{Name: "payload.exe", Size: 10},
		validationDomain.FileUploadOptions{AllowedExtensions: []string{"exe"}},
	)
	assert.False(t, result.IsValid)
	assert.True(t, result.HasCode(validationDomain.CodeDangerousFileExtension))
}

func TestValidationUseCase_PasswordStrength(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())

	strength := deps.useCase.PasswordStrength(context.Background(), "Zq7!mWx9pL2v")
	assert.Equal(t, validationDomain.MaxStrengthScore, strength.Score)
	assert.Equal(t, validationDomain.StrengthStrong, strength.Feedback)
	assert.Empty(t, strength.Suggestions)
}

func TestValidationUseCase_UpdateSecurityConfig_Invalid(t *testing.T) {
	deps := newTestUseCase(t, validationDomain.DefaultSecurityConfig())
	ctx := context.Background()

	err := deps.useCase.UpdateSecurityConfig(ctx, validationDomain.SecurityConfig{MaxAttempts: 0})
	assert.True(t, errors.Is(err, validationDomain.ErrInvalidSecurityConfig))
	assert.Equal(t, validationDomain.DefaultSecurityConfig(), deps.useCase.SecurityConfig(ctx))
}

func TestRunSubmissionCleanup(t *testing.T) {
	defer goleak.VerifyNone(t)

	purged := make(chan struct{}, 1)
	repo := &validationMocks.MockSubmissionRepository{}
	repo.On("DeleteExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) {
			select {
			case purged <- struct{}{}:
			default:
			}
		}).
		Return(int64(1), nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSubmissionCleanup(ctx, repo, 5*time.Millisecond, logger)
		close(done)
	}()

	select {
	case <-purged:
	case <-time.After(time.Second):
		t.Fatal("cleanup never ran")
	}

	cancel()
	<-done
}
