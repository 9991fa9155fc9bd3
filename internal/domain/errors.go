package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the referenced recommendation does not exist,
	// or when a random pick is requested from an empty store.
	ErrNotFound = errors.New("recommendation not found")

	// ErrConflict is returned when a recommendation with the same name exists.
	ErrConflict = errors.New("recommendation already exists")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when client input is malformed.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
