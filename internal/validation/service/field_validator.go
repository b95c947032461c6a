package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/allisson/fieldguard/internal/validation/domain"
)

// dateLayouts are accepted by KindDate rules, in evaluation order.
var dateLayouts = []string{"2006-01-02", "01/02/2006", time.RFC3339}

// Encrypter protects sensitive values, returning ciphertext.
type Encrypter interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
}

// FieldValidator applies one rule to one already-sanitized value.
type FieldValidator struct {
	patterns  *PatternLibrary
	scorer    *StrengthScorer
	encrypter Encrypter
	logger    *slog.Logger
}

// NewFieldValidator creates a FieldValidator. encrypter protects SSN values; when it is nil
// every SSN reports ENCRYPTION_FAILED.
func NewFieldValidator(
	patterns *PatternLibrary,
	scorer *StrengthScorer,
	encrypter Encrypter,
	logger *slog.Logger,
) *FieldValidator {
	return &FieldValidator{
		patterns:  patterns,
		scorer:    scorer,
		encrypter: encrypter,
		logger:    logger,
	}
}

// check collects the findings of one rule evaluation.
type check struct {
	field  string
	rule   domain.Rule
	result domain.ValidationResult
}

func (c *check) fail(code domain.Code, severity domain.Severity, message string) {
	if c.rule.Message != "" {
		message = c.rule.Message
	}
	c.result.AddError(domain.ValidationError{
		Field:    c.field,
		Kind:     c.rule.Kind,
		Message:  message,
		Code:     code,
		Severity: severity,
	})
}

// Validate checks value against rule. Checks run in order: required, kind-specific, length
// bounds, pattern. A missing required value short-circuits with REQUIRED, and an empty
// optional value is valid without further checks.
func (v *FieldValidator) Validate(
	ctx context.Context,
	field string,
	value any,
	rule domain.Rule,
) domain.ValidationResult {
	c := &check{field: field, rule: rule, result: domain.NewValidationResult(value)}

	if isEmpty(value) {
		if rule.Required {
			c.fail(domain.CodeRequired, domain.SeverityMedium, fmt.Sprintf("%s is required", field))
		}
		return c.result
	}

	s := stringify(value)

	switch rule.Kind {
	case domain.KindEmail:
		v.matchFormat(c, s, domain.CodeInvalidEmail, domain.SeverityLow, "Please enter a valid email address")
	case domain.KindPhone:
		v.validatePhone(c, s)
	case domain.KindPassword:
		v.validatePassword(c, s)
	case domain.KindPin:
		v.validatePin(c, s)
	case domain.KindAmount:
		validateAmount(c, value)
	case domain.KindCardNumber:
		v.validateCardNumber(c, s)
	case domain.KindCvv:
		v.matchFormat(c, s, domain.CodeInvalidCvv, domain.SeverityHigh, "CVV must be 3 or 4 digits")
		c.result.SanitizedValue = nil
	case domain.KindSsn:
		v.validateSsn(ctx, c, s)
	case domain.KindName:
		v.matchFormat(c, s, domain.CodeInvalidName, domain.SeverityLow,
			"Name may contain only letters, spaces, apostrophes and hyphens")
	case domain.KindAccountNumber:
		digits := strings.NewReplacer(" ", "", "-", "").Replace(s)
		c.result.SanitizedValue = digits
		v.matchFormat(c, digits, domain.CodeInvalidAccountNumber, domain.SeverityMedium,
			"Account number must be 4 to 17 digits")
	case domain.KindRoutingNumber:
		v.validateRoutingNumber(c, s)
	case domain.KindDate:
		validateDate(c, s)
	case domain.KindAddress:
		v.matchFormat(c, s, domain.CodeInvalidAddress, domain.SeverityLow, "Please enter a valid address")
	case domain.KindTaxID:
		v.matchFormat(c, s, domain.CodeInvalidTaxID, domain.SeverityMedium,
			"Tax ID must be NN-NNNNNNN or 9 digits")
	case domain.KindCustom:
		validateCustom(c, value)
	}

	validateLength(c, s)

	if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
		c.fail(domain.CodePatternMismatch, domain.SeverityMedium, fmt.Sprintf("%s has an invalid format", field))
	}

	return c.result
}

func (v *FieldValidator) matchFormat(
	c *check,
	s string,
	code domain.Code,
	severity domain.Severity,
	message string,
) bool {
	re, ok := v.patterns.Format(c.rule.Kind)
	if ok && re.MatchString(s) {
		return true
	}
	c.fail(code, severity, message)
	return false
}

func (v *FieldValidator) validatePhone(c *check, s string) {
	digits := stripNonDigits(s)
	c.result.SanitizedValue = digits
	v.matchFormat(c, digits, domain.CodeInvalidPhone, domain.SeverityLow, "Please enter a valid phone number")
}

func (v *FieldValidator) validatePassword(c *check, s string) {
	strength := v.scorer.Score(s)

	if strength.Score < 3 {
		severity := domain.SeverityMedium
		if strength.Score < 2 {
			severity = domain.SeverityHigh
		}
		c.fail(domain.CodeWeakPassword, severity, fmt.Sprintf("Password is %s", strength.Feedback))
	}

	if len(strength.Suggestions) > 0 {
		c.result.AddWarning(domain.ValidationWarning{
			Field:      c.field,
			Kind:       domain.KindPassword,
			Message:    "Password could be stronger",
			Code:       domain.CodePasswordSuggestion,
			Suggestion: strings.Join(strength.Suggestions, "; "),
		})
	}
}

// validatePin runs the format and common-value checks independently, so a PIN can
// receive both errors.
func (v *FieldValidator) validatePin(c *check, s string) {
	v.matchFormat(c, s, domain.CodeInvalidPin, domain.SeverityMedium, "PIN must be 4 to 6 digits")
	if v.patterns.IsCommonPin(s) {
		c.fail(domain.CodeCommonPin, domain.SeverityHigh, "PIN is too common")
	}
}

func validateAmount(c *check, value any) {
	amount, ok := toFloat(value)
	if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
		c.fail(domain.CodeInvalidAmount, domain.SeverityMedium, "Please enter a valid amount")
		return
	}

	c.result.SanitizedValue = strconv.FormatFloat(amount, 'f', 2, 64)

	if amount <= 0 {
		c.fail(domain.CodeInvalidAmount, domain.SeverityMedium, "Amount must be greater than zero")
	}
	if c.rule.Min != nil && amount < *c.rule.Min {
		c.fail(domain.CodeAmountTooLow, domain.SeverityMedium,
			fmt.Sprintf("Amount must be at least %.2f", *c.rule.Min))
	}
	if c.rule.Max != nil && amount > *c.rule.Max {
		c.fail(domain.CodeAmountTooHigh, domain.SeverityMedium,
			fmt.Sprintf("Amount must not exceed %.2f", *c.rule.Max))
	}
}

func (v *FieldValidator) validateCardNumber(c *check, s string) {
	digits := strings.Join(strings.Fields(s), "")

	v.matchFormat(c, digits, domain.CodeInvalidCardNumber, domain.SeverityHigh, "Card number must be 13 to 19 digits")
	if !Luhn(digits) {
		c.fail(domain.CodeInvalidCardChecksum, domain.SeverityHigh, "Card number is invalid")
	}

	c.result.SanitizedValue = MaskCardNumber(digits)
}

// MaskCardNumber keeps the first and last four characters of numbers with at least eight
// characters and replaces the rest with stars.
func MaskCardNumber(digits string) string {
	if len(digits) < 8 {
		return digits
	}
	return digits[:4] + strings.Repeat("*", len(digits)-8) + digits[len(digits)-4:]
}

func (v *FieldValidator) validateSsn(ctx context.Context, c *check, s string) {
	c.result.SanitizedValue = nil

	if !v.matchFormat(c, s, domain.CodeInvalidSsn, domain.SeverityCritical,
		"SSN must be NNN-NN-NNNN or 9 digits") {
		return
	}

	if v.encrypter == nil {
		v.logger.Error("ssn encryption unavailable", slog.String("field", c.field))
		c.fail(domain.CodeEncryptionFailed, domain.SeverityHigh, "Failed to secure sensitive data")
		return
	}

	ciphertext, err := v.encrypter.Encrypt(ctx, strings.ReplaceAll(s, "-", ""))
	if err != nil {
		v.logger.Error("ssn encryption failed", slog.String("field", c.field), slog.Any("error", err))
		c.fail(domain.CodeEncryptionFailed, domain.SeverityHigh, "Failed to secure sensitive data")
		return
	}

	c.result.SanitizedValue = ciphertext
}

func (v *FieldValidator) validateRoutingNumber(c *check, s string) {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(s)
	c.result.SanitizedValue = digits

	re, ok := v.patterns.Format(domain.KindRoutingNumber)
	if !ok || !re.MatchString(digits) || !abaChecksum(digits) {
		c.fail(domain.CodeInvalidRoutingNumber, domain.SeverityMedium, "Please enter a valid routing number")
	}
}

func validateDate(c *check, s string) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			c.result.SanitizedValue = t.Format("2006-01-02")
			return
		}
	}
	c.fail(domain.CodeInvalidDate, domain.SeverityLow, "Please enter a valid date")
}

func validateCustom(c *check, value any) {
	if c.rule.Custom == nil {
		return
	}

	res := c.rule.Custom(value)
	if res.IsValid() {
		return
	}

	message := res.Message()
	if message == "" {
		message = c.rule.Message
	}
	if message == "" {
		message = fmt.Sprintf("%s is invalid", c.field)
	}

	// Predicate messages take precedence over the rule override.
	c.result.AddError(domain.ValidationError{
		Field:    c.field,
		Kind:     c.rule.Kind,
		Message:  message,
		Code:     domain.CodeCustomValidationFailed,
		Severity: domain.SeverityMedium,
	})
}

// validateLength applies rune-length bounds. Min and Max count as length bounds for every
// kind except Amount; MinLength and MaxLength always do.
func validateLength(c *check, s string) {
	length := utf8.RuneCountInString(s)

	tooShort := func(n int) {
		c.fail(domain.CodeTooShort, domain.SeverityLow,
			fmt.Sprintf("%s must be at least %d characters", c.field, n))
	}
	tooLong := func(n int) {
		c.fail(domain.CodeTooLong, domain.SeverityLow,
			fmt.Sprintf("%s must be at most %d characters", c.field, n))
	}

	if c.rule.Kind != domain.KindAmount {
		if c.rule.Min != nil && float64(length) < *c.rule.Min {
			tooShort(int(math.Ceil(*c.rule.Min)))
		}
		if c.rule.Max != nil && float64(length) > *c.rule.Max {
			tooLong(int(math.Floor(*c.rule.Max)))
		}
	}

	if c.rule.MinLength != nil && length < *c.rule.MinLength {
		tooShort(*c.rule.MinLength)
	}
	if c.rule.MaxLength != nil && length > *c.rule.MaxLength {
		tooLong(*c.rule.MaxLength)
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimFunc(v, unicode.IsSpace) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
