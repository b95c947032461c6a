package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
	validationUseCase "github.com/allisson/fieldguard/internal/validation/usecase"
)

// ErrFormInvalid is returned after printing a result that has errors, so the process exits
// non-zero.
var ErrFormInvalid = errors.New("form is invalid")

// RunValidate validates a JSON object against a pre-built schema and prints the result.
func RunValidate(
	ctx context.Context,
	useCase validationUseCase.ValidationUseCase,
	writer io.Writer,
	schemaName string,
	data string,
	userID string,
	format string,
) error {
	format, err := parseFormat(format)
	if err != nil {
		return err
	}

	schema, err := validationDomain.SchemaByName(schemaName)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(validationDomain.SchemaNames(), ", "))
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return fmt.Errorf("failed to parse data as a JSON object: %w", err)
	}

	result := useCase.ValidateForm(ctx, values, schema, userID)

	if format == formatJSON {
		err = writeJSON(writer, result)
	} else {
		err = writeFormResultText(writer, result)
	}
	if err != nil {
		return err
	}

	if !result.IsValid {
		return ErrFormInvalid
	}
	return nil
}

// writeFormResultText prints errors and warnings one per line followed by the sanitized data.
func writeFormResultText(w io.Writer, result validationDomain.FormResult) error {
	var b strings.Builder

	if result.IsValid {
		b.WriteString("Result: valid\n")
	} else {
		b.WriteString("Result: invalid\n")
	}

	if len(result.Errors) > 0 {
		b.WriteString("Errors:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "  - %s [%s, %s] %s\n", e.Field, e.Code, e.Severity, e.Message)
		}
	}

	if len(result.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  - %s [%s] %s\n", w.Field, w.Code, w.Message)
		}
	}

	if len(result.SanitizedData) > 0 {
		fields := make([]string, 0, len(result.SanitizedData))
		for field := range result.SanitizedData {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		b.WriteString("Sanitized:\n")
		for _, field := range fields {
			fmt.Fprintf(&b, "  %s: %v\n", field, result.SanitizedData[field])
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RunPasswordStrength scores a password and prints the score, band and suggestions.
func RunPasswordStrength(
	ctx context.Context,
	useCase validationUseCase.ValidationUseCase,
	writer io.Writer,
	password string,
	format string,
) error {
	format, err := parseFormat(format)
	if err != nil {
		return err
	}

	strength := useCase.PasswordStrength(ctx, password)

	if format == formatJSON {
		return writeJSON(writer, strength)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d (%s)\n", strength.Score, strength.Feedback)
	for _, s := range strength.Suggestions {
		fmt.Fprintf(&b, "  - %s\n", s)
	}

	_, err = io.WriteString(writer, b.String())
	return err
}
