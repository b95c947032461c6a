package domain

import (
	"github.com/allisson/fieldguard/internal/errors"
)

// Validation-specific error definitions.
//
// These describe problems with how a schema or configuration is built. Outcomes of
// validating user data are never Go errors; they are ValidationResult values.
var (
	// ErrInvalidRule indicates a rule is malformed (unknown kind, conflicting flags,
	// inverted bounds, missing custom predicate).
	ErrInvalidRule = errors.Wrap(errors.ErrInvalidInput, "invalid validation rule")

	// ErrInvalidSchema indicates a schema is empty or declares the same field twice.
	ErrInvalidSchema = errors.Wrap(errors.ErrInvalidInput, "invalid validation schema")

	// ErrSchemaNotFound indicates no pre-built schema exists with the given name.
	ErrSchemaNotFound = errors.Wrap(errors.ErrNotFound, "schema not found")

	// ErrInvalidSecurityConfig indicates attempt or block settings are out of range.
	ErrInvalidSecurityConfig = errors.Wrap(errors.ErrInvalidInput, "invalid security config")

	// ErrDuplicateSubmission indicates an identical payload was submitted inside the window.
	ErrDuplicateSubmission = errors.Wrap(errors.ErrConflict, "duplicate submission")

	// ErrSubmissionNotFound indicates no live submission exists under a key.
	ErrSubmissionNotFound = errors.Wrap(errors.ErrNotFound, "submission not found")
)
