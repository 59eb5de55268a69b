package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeCannotBook   = "CANNOT_BOOK"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeTimeout      = "TIMEOUT"
	CodeInvalidInput = "INVALID_INPUT"
	CodeRateLimited  = "RATE_LIMITED"
)

// statusByCode is the HTTP status each code is reported with unless the
// error was built with New.
var statusByCode = map[string]int{
	CodeNotFound:     http.StatusNotFound,
	CodeValidation:   http.StatusUnprocessableEntity,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeForbidden:    http.StatusForbidden,
	CodeCannotBook:   http.StatusPaymentRequired,
	CodeConflict:     http.StatusConflict,
	CodeInternal:     http.StatusInternalServerError,
	CodeBadRequest:   http.StatusBadRequest,
	CodeTimeout:      http.StatusGatewayTimeout,
	CodeInvalidInput: http.StatusBadRequest,
	CodeRateLimited:  http.StatusTooManyRequests,
}

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// New builds an error whose status differs from the code's usual one.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func newCoded(code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: statusByCode[code]}
}

func NotFound(resource string) *AppError {
	return newCoded(CodeNotFound, resource+" not found")
}

func Validation(message string, details map[string]any) *AppError {
	return newCoded(CodeValidation, message).WithDetails(details)
}

func InvalidInput(message string) *AppError { return newCoded(CodeInvalidInput, message) }

func Unauthorized(message string) *AppError { return newCoded(CodeUnauthorized, message) }

func Forbidden(message string) *AppError { return newCoded(CodeForbidden, message) }

// CannotBook reports a user with no registration that could ever lead to a
// hotel booking.
func CannotBook(message string) *AppError { return newCoded(CodeCannotBook, message) }

// Conflict reports a request that lost a race and may be retried as is.
func Conflict(message string) *AppError { return newCoded(CodeConflict, message) }

func Timeout(message string) *AppError { return newCoded(CodeTimeout, message) }

func TooManyRequests(message string) *AppError { return newCoded(CodeRateLimited, message) }

func Internal(message string, err error) *AppError {
	appErr := newCoded(CodeInternal, message)
	appErr.Err = err
	return appErr
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError returns the AppError in err's chain, or wraps err as Internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
