package domain

import "errors"

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrForbidden         = errors.New("access forbidden")
	ErrNotFound          = errors.New("not found")
	ErrMissingBaseURL    = errors.New("backend base address is not configured")
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPendingRequest    = errors.New("a feedback request is already pending")
	ErrSkipped           = errors.New("nothing to do for the current session")
)

// DefaultLoginFailure is the message used when the backend gives no reason.
const DefaultLoginFailure = "Login failed"

// DefaultRegisterFailure is the registration counterpart of DefaultLoginFailure.
const DefaultRegisterFailure = "Registration failed"

// AuthError is the failure value returned by login and registration. Reason
// is safe to show to the person who submitted the form.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	return e.Reason
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Reason extracts the user-facing message from an error returned by login or
// registration. Any other error yields the generic login failure message.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var ae *AuthError
	if errors.As(err, &ae) && ae.Reason != "" {
		return ae.Reason
	}
	return DefaultLoginFailure
}
