package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned for missing rows and for rows owned by another user
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned when an email/password pair does not match an active user
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	// ErrInvalidToken is returned for unknown, revoked or malformed bearer tokens
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotAuthenticated is returned when a protected route is called without credentials
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
)

// NonFieldErrors is the field key for errors not tied to a single input field
const NonFieldErrors = "non_field_errors"

// ValidationError carries field-level messages for malformed or missing input
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add records a message for field
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// HasErrors reports whether any message was recorded
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
