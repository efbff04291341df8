// Package errorutil defines the service error taxonomy shared by the domain,
// services and HTTP edge.
package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes surfaced to API clients.
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInvalidState      = "INVALID_STATE"
	CodeAlreadySuspended  = "ALREADY_SUSPENDED"
	CodeNotSuspended      = "NOT_SUSPENDED"
	CodeConflict          = "CONFLICT"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrValidation        = &DomainError{Code: CodeValidationFailed}
	ErrInvalidTransition = &DomainError{Code: CodeInvalidTransition}
	ErrInvalidState      = &DomainError{Code: CodeInvalidState}
	ErrAlreadySuspended  = &DomainError{Code: CodeAlreadySuspended}
	ErrNotSuspended      = &DomainError{Code: CodeNotSuspended}
	ErrConflict          = &DomainError{Code: CodeConflict}
	ErrForbidden         = &DomainError{Code: CodeForbidden}
	ErrUnauthenticated   = &DomainError{Code: CodeUnauthenticated}
	ErrNotFound          = &DomainError{Code: CodeNotFound}
)

// FieldViolation is a single client-correctable field failure.
type FieldViolation struct {
	Field  string
	Format string
	Args   []any
}

// Message renders the violation in English.
func (f FieldViolation) Message() string {
	return fmt.Sprintf(f.Format, f.Args...)
}

// DomainError standardizes application errors.
//
// Format and Args keep the untranslated message so the edge can localize it;
// Message is the English rendering.
type DomainError struct {
	Code       string
	Message    string
	Format     string
	Args       []any
	HTTPStatus int
	Details    map[string]any
	Fields     []FieldViolation
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError constructs a DomainError from a format string.
func NewDomainError(code string, status int, details map[string]any, format string, args ...any) *DomainError {
	return &DomainError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Format:     format,
		Args:       args,
		HTTPStatus: status,
		Details:    details,
	}
}

func plain(code string, status int, details map[string]any, message string) *DomainError {
	return &DomainError{
		Code:       code,
		Message:    message,
		Format:     message,
		HTTPStatus: status,
		Details:    details,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return plain(CodeValidationFailed, http.StatusBadRequest, details, message)
}

// NewFieldValidationError reports every field failure at once.
func NewFieldValidationError(fields []FieldViolation) error {
	err := plain(CodeValidationFailed, http.StatusBadRequest, nil, "validation failed")
	err.Fields = append([]FieldViolation(nil), fields...)
	return err
}

func NewInvalidTransition(format string, args ...any) error {
	return NewDomainError(CodeInvalidTransition, http.StatusConflict, nil, format, args...)
}

func NewInvalidState(format string, args ...any) error {
	return NewDomainError(CodeInvalidState, http.StatusConflict, nil, format, args...)
}

func NewAlreadySuspended() error {
	return plain(CodeAlreadySuspended, http.StatusConflict, nil, "account is already suspended")
}

func NewNotSuspended() error {
	return plain(CodeNotSuspended, http.StatusConflict, nil, "account is not suspended")
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return plain(CodeNotFound, http.StatusNotFound, details, resource+" not found")
}

func NewUnauthenticated(message string) error {
	return plain(CodeUnauthenticated, http.StatusUnauthorized, nil, message)
}

func NewForbidden(message string) error {
	return plain(CodeForbidden, http.StatusForbidden, nil, message)
}

func NewConflict(message string, details map[string]any) error {
	return plain(CodeConflict, http.StatusConflict, details, message)
}

func NewInternalError(err error) error {
	return internalError(err)
}

func internalError(err error) *DomainError {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		Format:     "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf returns the domain code carried by err, or CodeInternal.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return plain(CodeNotFound, http.StatusNotFound, map[string]any{}, "resource not found")
	}
	return internalError(err)
}
