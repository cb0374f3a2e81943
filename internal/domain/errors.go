package domain

import (
	"errors"
	"fmt"
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Business rule failures. All of them are client errors and are never retried.
var (
	// ErrInvalidInput is returned for malformed or out-of-range monetary input
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition is returned when a workflow guard rejects an event
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNotEditable is returned when a non-draft document is mutated
	ErrNotEditable = fmt.Errorf("%w: document is not editable", ErrInvalidTransition)
)

// RuleError carries a user-facing message and unwraps to one of the sentinels above.
type RuleError struct {
	kind    error
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func (e *RuleError) Unwrap() error {
	return e.kind
}

// NewInvalidInput builds an ErrInvalidInput with a message
func NewInvalidInput(format string, args ...any) error {
	return &RuleError{kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidTransition builds an ErrInvalidTransition with a message
func NewInvalidTransition(format string, args ...any) error {
	return &RuleError{kind: ErrInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// NewNotEditable builds an ErrNotEditable with a message
func NewNotEditable(format string, args ...any) error {
	return &RuleError{kind: ErrNotEditable, Message: fmt.Sprintf(format, args...)}
}

// ValidationMessages provides human-readable validation error messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"lt":       "Must be less than maximum value",
	"uuid":     "Must be a valid UUID",
	"oneof":    "Must be one of the allowed values",
	"len":      "Must be exactly the specified length",
	"datetime": "Must be a date in YYYY-MM-DD format",
	"dive":     "Contains an invalid element",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeBusinessRule = "business_rule_violation"
	ErrorTypeInternal     = "internal_error"
)
