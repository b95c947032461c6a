package domain

import "fmt"

// ValidationError is a blocking finding. Any error, of any severity, makes the
// enclosing result invalid.
type ValidationError struct {
	Field    string   `json:"field"`
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message"`
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
}

// Error implements the error interface so a ValidationError can be logged or wrapped.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
}

// ValidationWarning is an advisory finding. It never affects validity.
type ValidationWarning struct {
	Field      string `json:"field"`
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Code       Code   `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidationResult is the outcome of validating a single value.
type ValidationResult struct {
	IsValid        bool                `json:"is_valid"`
	Errors         []ValidationError   `json:"errors"`
	Warnings       []ValidationWarning `json:"warnings"`
	SanitizedValue any                 `json:"sanitized_value"`
}

// NewValidationResult returns an empty, valid result carrying value.
func NewValidationResult(value any) ValidationResult {
	return ValidationResult{
		IsValid:        true,
		Errors:         []ValidationError{},
		Warnings:       []ValidationWarning{},
		SanitizedValue: value,
	}
}

// AddError appends an error and marks the result invalid.
func (r *ValidationResult) AddError(err ValidationError) {
	r.Errors = append(r.Errors, err)
	r.IsValid = false
}

// AddWarning appends a warning.
func (r *ValidationResult) AddWarning(w ValidationWarning) {
	r.Warnings = append(r.Warnings, w)
}

// FormResult is the aggregate outcome of validating a whole schema.
// SanitizedData holds one entry per schema field.
type FormResult struct {
	IsValid       bool                `json:"is_valid"`
	Errors        []ValidationError   `json:"errors"`
	Warnings      []ValidationWarning `json:"warnings"`
	SanitizedData map[string]any      `json:"sanitized_data"`
}

// NewFormResult returns an empty, valid form result.
func NewFormResult() FormResult {
	return FormResult{
		IsValid:       true,
		Errors:        []ValidationError{},
		Warnings:      []ValidationWarning{},
		SanitizedData: map[string]any{},
	}
}

// Merge folds a field result into the form result under field.
func (r *FormResult) Merge(field string, res ValidationResult) {
	r.Errors = append(r.Errors, res.Errors...)
	r.Warnings = append(r.Warnings, res.Warnings...)
	r.SanitizedData[field] = res.SanitizedValue
	r.IsValid = len(r.Errors) == 0
}

// ErrorsFor returns the errors reported for one field.
func (r FormResult) ErrorsFor(field string) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// HasCode reports whether any error carries code.
func (r FormResult) HasCode(code Code) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// HasCode reports whether any error carries code.
func (r ValidationResult) HasCode(code Code) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}
