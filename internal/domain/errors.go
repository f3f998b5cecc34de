package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrConversionFailed  = errors.New("conversion failed")
	ErrTimeout           = errors.New("conversion timed out")
	ErrInternal          = errors.New("internal error")
)

type (
	// ValidationError indicates invalid input rejected before conversion
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}
)

func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// UnsupportedFormatError is returned when the converter ran but has no export
// filter for the requested target format and input type.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("conversion failed, no export filter found for the format: %s", e.Format)
}

func (e *UnsupportedFormatError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// ConversionError is returned when the converter produced no output for any
// other reason. Diagnostics stay in the logs; the message is intentionally bare.
type ConversionError struct {
	Filename string
	Format   string
}

func (e *ConversionError) Error() string { return "conversion failed" }

func (e *ConversionError) StatusCode() int { return http.StatusInternalServerError }

func (e *ConversionError) Is(target error) bool { return target == ErrConversionFailed }

// TimeoutError is returned when the converter exceeded its deadline and was killed.
type TimeoutError struct {
	Format  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("conversion to %s timed out after %s", e.Format, e.Timeout)
}

func (e *TimeoutError) StatusCode() int { return http.StatusGatewayTimeout }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// InternalError wraps environment failures (workspace collisions, launch
// failures, filesystem errors). Op names the step that failed.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func (e *InternalError) StatusCode() int { return http.StatusInternalServerError }

func (e *InternalError) Is(target error) bool { return target == ErrInternal }

// NewInternalError wraps err as an InternalError for the given operation.
func NewInternalError(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}

// PublicMessage returns the message that is safe to show to a client.
// Internal failures collapse to a generic message so paths and OS errors stay in the logs.
func PublicMessage(err error) string {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		return "internal server error"
	}
	if errors.Is(err, ErrInternal) {
		return "internal server error"
	}
	return httpErr.Error()
}
