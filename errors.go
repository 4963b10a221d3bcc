package soulauth

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared across the store implementations and the
// resolver. Handlers translate these at the HTTP boundary; nothing
// below the Gateway knows about status codes.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateProviderID = errors.New("provider id already linked to another user")

	// ErrMissingEmail means a federated profile arrived without any
	// email address, usually because the user declined the email
	// scope. Not retryable without re-consent.
	ErrMissingEmail = errors.New("could not retrieve email from provider")

	// ErrProviderConflict means the account matched by email is
	// already linked to a different account on the same provider.
	ErrProviderConflict = errors.New("provider already linked with a different identity")
)

// Error codes returned in JSON bodies alongside the message.
const (
	ErrCodeMissingField  = "missing_field"
	ErrCodeInvalidCreds  = "invalid_credentials"
	ErrCodeWrongMethod   = "wrong_login_method"
	ErrCodeEmailExists   = "email_exists"
	ErrCodeMissingEmail  = "missing_email"
	ErrCodeProviderState = "invalid_provider_state"
	ErrCodeInternal      = "internal_error"
)

// AuthError is a user-facing authentication failure. Message is safe
// to return to the client verbatim; wrapped causes are not.
type AuthError struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	Field      string `json:"field,omitempty"`
	HTTPStatus int    `json:"-"`

	Err error `json:"-"`
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError creates a 400-level AuthError. Almost every failure the
// login page can act on is a 400; the frontend switches on Code.
func NewAuthError(code, message, field string) *AuthError {
	return &AuthError{
		Code:       code,
		Message:    message,
		Field:      field,
		HTTPStatus: http.StatusBadRequest,
	}
}

// InternalError wraps an unexpected failure into a generic 500. The
// underlying error is kept for logging but never leaks to the client.
func InternalError(err error) *AuthError {
	return &AuthError{
		Code:       ErrCodeInternal,
		Message:    "Something went wrong. Please try again.",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// AsAuthError unwraps err into an *AuthError if there is one.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
