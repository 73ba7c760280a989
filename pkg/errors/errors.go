package errors

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// JWT and tokens
	ErrInvalidSigningMethod = fmt.Errorf("invalid token signing method")
	ErrInvalidToken         = fmt.Errorf("invalid token")
	ErrTokenExpired         = fmt.Errorf("token has expired")
	ErrTokenNotYetValid     = fmt.Errorf("token is not valid yet")

	// Authorization
	ErrEmptyAuthHeader   = fmt.Errorf("authorization header is missing")
	ErrInvalidAuthHeader = fmt.Errorf("authorization header has an invalid format")
	ErrUnauthorized      = fmt.Errorf("unauthorized")

	// Context
	ErrPrincipalNotFoundInContext = fmt.Errorf("principal not found in request context")

	// Common
	ErrNotFound            = fmt.Errorf("record not found")
	ErrConflict            = fmt.Errorf("conflict")
	ErrBadRequest          = fmt.Errorf("bad request")
	ErrDatabaseUnavailable = fmt.Errorf("database is unavailable")
)

// HttpError carries the status and the user-facing message; Err is logged, never sent.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, ctx map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: ctx}
}

// FieldIssue is one entry of the per-field issue list returned with 400 responses.
type FieldIssue struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Issues  []FieldIssue
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(message string, issues ...FieldIssue) error {
	return &ValidationError{Message: message, Issues: issues}
}

// NewNotFoundError keeps ErrNotFound in the chain so callers can errors.Is it.
func NewNotFoundError(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func NewConflictError(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// IsUnavailable reports whether err means the database could not be reached at all.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseUnavailable) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
