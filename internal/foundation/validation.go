// Package foundation holds small shared building blocks for validation.
package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// ValidationResult collects field failures from a validation pass.
type ValidationResult struct {
	Errors []FieldError
}

// FieldError represents a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("field '%s': %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid reports whether no failures were recorded.
func (vr *ValidationResult) Valid() bool {
	return len(vr.Errors) == 0
}

// Add records a failure.
func (vr *ValidationResult) Add(field, code, format string, args ...any) {
	vr.Errors = append(vr.Errors, FieldError{
		Field:   field,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// ToError converts the result into a classified validation error, or nil when valid.
func (vr *ValidationResult) ToError() error {
	if vr.Valid() {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		messages = append(messages, err.Error())
	}
	return errors.ValidationError(strings.Join(messages, "; ")).
		WithContext("failures", len(vr.Errors)).
		Build()
}
