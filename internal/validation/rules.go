package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/fieldguard/internal/errors"
	"github.com/allisson/fieldguard/internal/validation/domain"
)

var (
	// identifierRegex matches field names, user ids and schema names accepted over the API.
	identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_.:@\-]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Identifier validates field names, user ids and schema names.
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return identifierRegex.MatchString(s)
	},
	validation.NewError("validation_identifier", "must contain only letters, digits and _ . : @ -"),
)

// RuleKind validates that a string names a rule kind.
var RuleKind = validation.NewStringRuleWithError(
	func(s string) bool {
		return domain.Kind(s).IsRuleKind()
	},
	validation.NewError("validation_rule_kind", "must be a known rule kind"),
)

// Regexp validates that a string compiles as a regular expression.
var Regexp = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := regexp.Compile(s)
		return err == nil
	},
	validation.NewError("validation_regexp", "must be a valid regular expression"),
)
