package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors aggregates per-field messages so a bad payload reports
// every problem at once instead of failing on the first.
type ValidationErrors struct {
	Fields map[string][]string
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Fields: make(map[string][]string)}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Fields) > 0
}

func (v *ValidationErrors) Error() string {
	fields := make([]string, 0, len(v.Fields))
	for field := range v.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(v.Fields[field], "; ")))
	}
	return strings.Join(parts, ", ")
}

// AsValidationErrors reports whether err carries collected field errors.
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	var v *ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
