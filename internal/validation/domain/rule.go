package domain

import (
	"fmt"
	"regexp"

	validation "github.com/jellydator/validation"
)

// CustomResult is the outcome of a custom predicate: valid, or invalid with an
// optional message. An empty message means the default message is used.
type CustomResult struct {
	valid   bool
	message string
}

// Valid returns a passing CustomResult.
func Valid() CustomResult {
	return CustomResult{valid: true}
}

// Invalid returns a failing CustomResult. Pass "" to use the rule's default message.
func Invalid(message string) CustomResult {
	return CustomResult{message: message}
}

// IsValid reports whether the predicate passed.
func (r CustomResult) IsValid() bool {
	return r.valid
}

// Message returns the failure message, if any.
func (r CustomResult) Message() string {
	return r.message
}

// CustomPredicate evaluates a sanitized value for KindCustom rules.
type CustomPredicate func(value any) CustomResult

// Rule is a declarative constraint on one field.
//
// Min and Max are numeric bounds for KindAmount and rune-length bounds for every
// other kind. MinLength and MaxLength are always rune-length bounds, independent of
// kind, so an amount rule can carry numeric and length bounds at the same time.
//
// Lowercase and Uppercase are mutually exclusive. Validate rejects a rule that sets
// both; if such a rule reaches the sanitizer anyway, lowercase wins.
type Rule struct {
	Kind      Kind
	Required  bool
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
	Pattern   *regexp.Regexp
	Custom    CustomPredicate
	Message   string

	Sanitize  bool
	Trim      bool
	Lowercase bool
	Uppercase bool
}

// Float returns a pointer to v, for Rule.Min and Rule.Max.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v, for Rule.MinLength and Rule.MaxLength.
func Int(v int) *int {
	return &v
}

// Validate checks that the rule is well formed.
func (r *Rule) Validate() error {
	kinds := make([]interface{}, 0, len(RuleKinds))
	for _, k := range RuleKinds {
		kinds = append(kinds, k)
	}

	err := validation.ValidateStruct(r,
		validation.Field(&r.Kind, validation.Required, validation.In(kinds...)),
		validation.Field(&r.Custom, validation.By(r.validateCustom)),
		validation.Field(&r.Uppercase, validation.By(r.validateCase)),
		validation.Field(&r.Max, validation.By(r.validateBounds)),
		validation.Field(&r.MaxLength, validation.By(r.validateLengthBounds)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return nil
}

func (r *Rule) validateCustom(value interface{}) error {
	if r.Kind == KindCustom && r.Custom == nil {
		return validation.NewError("validation_custom_required", "custom rules need a predicate")
	}
	return nil
}

func (r *Rule) validateCase(value interface{}) error {
	if r.Lowercase && r.Uppercase {
		return validation.NewError(
			"validation_case_conflict",
			"lowercase and uppercase cannot both be set",
		)
	}
	return nil
}

func (r *Rule) validateBounds(value interface{}) error {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return validation.NewError("validation_bounds", "min must not be greater than max")
	}
	if r.Kind != KindAmount {
		if (r.Min != nil && *r.Min < 0) || (r.Max != nil && *r.Max < 0) {
			return validation.NewError("validation_bounds_negative", "length bounds must not be negative")
		}
	}
	return nil
}

func (r *Rule) validateLengthBounds(value interface{}) error {
	if r.MinLength != nil && *r.MinLength < 0 {
		return validation.NewError("validation_length_negative", "min length must not be negative")
	}
	if r.MinLength != nil && r.MaxLength != nil && *r.MinLength > *r.MaxLength {
		return validation.NewError("validation_length_bounds", "min length must not be greater than max length")
	}
	return nil
}
