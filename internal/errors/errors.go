package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindAuth         Kind = "auth"
	KindState        Kind = "state"
	KindNotFound     Kind = "not_found"
	KindNotification Kind = "notification"
	KindForbidden    Kind = "forbidden"
	KindConfig       Kind = "config"
	KindInternal     Kind = "internal"
)

// Error is a classified domain error. Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same kind and code.
// A target without a code matches any error of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation reports missing or malformed input.
func Validation(message string) *Error {
	return newError(KindValidation, "VALIDATION_ERROR", message)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return newError(KindConflict, "CONFLICT", message)
}

// Auth reports bad credentials, codes or tokens. Messages stay generic.
func Auth(message string) *Error {
	return newError(KindAuth, "UNAUTHORIZED", message)
}

// State reports an operation that is not valid for the account's lifecycle state.
func State(message string) *Error {
	return newError(KindState, "INVALID_STATE", message)
}

// NotFound reports a missing account or submission.
func NotFound(message string) *Error {
	return newError(KindNotFound, "NOT_FOUND", message)
}

// Forbidden reports a caller acting on a resource it does not own.
func Forbidden(message string) *Error {
	return newError(KindForbidden, "FORBIDDEN", message)
}

// Notification wraps an outbound transport failure.
func Notification(message string, err error) *Error {
	e := newError(KindNotification, "NOTIFICATION_FAILED", message)
	e.Err = err
	return e
}

// Config reports invalid or missing configuration at construction time.
func Config(message string) *Error {
	return newError(KindConfig, "CONFIG_ERROR", message)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	// ErrAccountNotFound is returned when an account does not exist.
	ErrAccountNotFound = newError(KindNotFound, "ACCOUNT_NOT_FOUND", "account not found")
	// ErrSubmissionNotFound is returned when a submission does not exist or is not owned by the caller.
	ErrSubmissionNotFound = newError(KindNotFound, "SUBMISSION_NOT_FOUND", "submission not found or you don't have permission to change it")
	// ErrInvalidCredentials never reveals which of email or password was wrong.
	ErrInvalidCredentials = newError(KindAuth, "INVALID_CREDENTIALS", "invalid email or password")
	// ErrInvalidOTP is returned when the supplied OTP does not match the stored one.
	ErrInvalidOTP = newError(KindAuth, "INVALID_OTP", "invalid OTP")
	// ErrInvalidResetToken covers wrong, expired and absent reset codes alike.
	ErrInvalidResetToken = newError(KindAuth, "INVALID_RESET_TOKEN", "invalid or expired reset token")
	// ErrNotAuthenticated is returned when an operation needs a caller identity and has none.
	ErrNotAuthenticated = newError(KindAuth, "UNAUTHORIZED", "user not authenticated")
	// ErrAlreadyRegistered is returned when the email belongs to a verified account.
	ErrAlreadyRegistered = newError(KindConflict, "ALREADY_REGISTERED", "email already registered")
	// ErrEmailInUse is returned when a profile update collides with another account's email.
	ErrEmailInUse = newError(KindConflict, "EMAIL_IN_USE", "email already in use")
	// ErrNotVerified is returned when login is attempted before OTP verification.
	ErrNotVerified = newError(KindState, "NOT_VERIFIED", "please verify your OTP before logging in")
	// ErrAlreadyVerified is returned when an OTP is re-requested for a verified account.
	ErrAlreadyVerified = newError(KindState, "ALREADY_VERIFIED", "account is already verified")
	// ErrNotApproved is returned when a hirer acts before an admin approved the account.
	ErrNotApproved = newError(KindState, "NOT_APPROVED", "account is not approved by admin")
	// ErrVerifyBeforeApproval is returned when an admin decides on an unverified hirer.
	ErrVerifyBeforeApproval = newError(KindState, "VERIFICATION_REQUIRED", "hirer must verify OTP before status can be updated")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var statusByKind = map[Kind]int{
	KindValidation:   http.StatusBadRequest,
	KindConflict:     http.StatusConflict,
	KindAuth:         http.StatusUnauthorized,
	KindState:        http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindForbidden:    http.StatusForbidden,
	KindNotification: http.StatusBadGateway,
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unclassified is an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if errors.As(err, &e) {
		if status, ok := statusByKind[e.Kind]; ok {
			return NewHTTPError(status, e.Message, e.Code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
