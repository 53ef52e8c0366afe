package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so callers can write
// errors.Is(err, errors.ErrPatientNotFound).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// StatusCode maps the error code onto an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound, ErrPatientNotFound, ErrBedNotFound, ErrNoBedAvailable, ErrNoTargetBedAvailable:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrConflict
	ErrStoreUnavailable
	ErrPatientNotFound
	ErrBedNotFound
	ErrNoBedAvailable
	ErrNoTargetBedAvailable
)

// Sentinels for errors.Is comparisons.
var (
	PatientNotFound      = &AppError{Code: ErrPatientNotFound, Message: "patient not found"}
	BedNotFound          = &AppError{Code: ErrBedNotFound, Message: "bed not found"}
	NoBedAvailable       = &AppError{Code: ErrNoBedAvailable, Message: "no available bed found"}
	NoTargetBedAvailable = &AppError{Code: ErrNoTargetBedAvailable, Message: "no available target bed"}
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewValidation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

func NewStoreUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrStoreUnavailable,
		Message: "record store unavailable",
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func Validation(message string, err error) *AppError {
	return NewValidation(message, err)
}

func Conflict(message string, err error) *AppError {
	return NewConflict(message, err)
}

func StoreUnavailable(err error) *AppError {
	return NewStoreUnavailable(err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(err error) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: "forbidden",
		Err:     err,
	}
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As is re-exported so callers importing this package under the name
// "errors" keep access to the standard helper.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is re-exported alongside As.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
