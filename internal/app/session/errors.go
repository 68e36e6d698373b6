package session

import (
	"errors"
	"sort"

	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/validation"
)

// User-visible notices
const (
	MsgSignedIn       = "Signed in successfully!"
	MsgSignedUp       = "Account created successfully! Please check your email to verify your account."
	MsgSignedOut      = "Signed out successfully"
	MsgSignOutFailed  = "Error signing out"
	msgBadCredentials = "Invalid login credentials"
	msgNotVerified    = "Email not confirmed"
	msgDuplicate      = "User already registered"
	msgUnavailable    = "Unable to reach the server. Please try again."
)

// AuthError is a failed sign-in, sign-up or sign-out carrying the message
// to show the user. Fields is set when the form never reached the backend.
type AuthError struct {
	Message string
	Fields  validation.FieldErrors
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// IsValidation reports whether the error came from form validation
func (e *AuthError) IsValidation() bool { return len(e.Fields) > 0 }

func validationError(fields validation.FieldErrors) *AuthError {
	// deterministic headline: first field in alphabetical order
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &AuthError{
		Message: fields[keys[0]],
		Fields:  fields,
		Err:     apperrors.ErrValidationFailed,
	}
}

func backendError(err error) *AuthError {
	msg := msgUnavailable
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		msg = msgBadCredentials
	case errors.Is(err, apperrors.ErrEmailNotVerified):
		msg = msgNotVerified
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		msg = msgDuplicate
	case errors.Is(err, apperrors.ErrValidationFailed):
		msg = err.Error()
	}
	return &AuthError{Message: msg, Err: err}
}
