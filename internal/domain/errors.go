package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("not found")

// ValidationError collects per-field problems with a request or a configuration record.
type ValidationError struct {
	fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, msg string) {
	if e.fields == nil {
		e.fields = make(map[string][]string)
	}
	e.fields[field] = append(e.fields[field], msg)
}

func (e *ValidationError) Empty() bool { return len(e.fields) == 0 }

func (e *ValidationError) Fields() map[string][]string { return e.fields }

// Err returns nil when nothing was added, so callers can `return verr.Err()`.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func IsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// NotFoundError is a well-formed request naming something that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.ID) }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConfigurationUnavailableError means a required record set could not be read.
type ConfigurationUnavailableError struct {
	Source string
	Err    error
}

func (e *ConfigurationUnavailableError) Error() string {
	return fmt.Sprintf("configuration source %s unavailable: %v", e.Source, e.Err)
}

func (e *ConfigurationUnavailableError) Unwrap() error { return e.Err }
