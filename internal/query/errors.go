package query

import (
	"fmt"
	"strings"
)

// FieldError is a single validation failure at a specific field path.
type FieldError struct {
	Field   string
	Message string
}

// ConfigValidationError aggregates schema violations found in a role
// configuration document.
type ConfigValidationError struct {
	Errors []FieldError
}

func (e *ConfigValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("role config validation failed:\n")
	for i, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, fe.Field, fe.Message))
	}
	return sb.String()
}
