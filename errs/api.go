package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrConflict       = errors.New("resource conflict")
	ErrCORSBlocked    = errors.New("request blocked by CORS policy")
	ErrRouteNotFound  = errors.New("route not found")
	ErrMethodNotFound = errors.New("method not allowed")
)

// ApiErr is an error with everything the Responder needs to answer it:
// a status, a message for people, the form field at fault and where the
// client should go next.
type ApiErr struct {
	StatusCode int
	err        error
	Details    string // shown to the user
	Field      string // form field at fault, if any
	Cause      error  // underlying driver, network or upload error
	Redirect   string // route the client should navigate to, if any
}

func (e *ApiErr) Error() string {
	if e.Details == "" {
		return e.err.Error()
	}
	return e.err.Error() + ": " + e.Details
}

// Unwrap exposes the sentinel, so errors.Is(err, ErrFetch) and friends work
// on an *ApiErr. Cause is not unwrapped.
func (e *ApiErr) Unwrap() error {
	return e.err
}

// GetFullError renders e followed by its chain of causes, "a -> b -> c".
func (e *ApiErr) GetFullError() string {
	if e.Cause == nil {
		return e.Error()
	}
	var inner *ApiErr
	if errors.As(e.Cause, &inner) {
		return e.Error() + " -> " + inner.GetFullError()
	}
	return e.Error() + " -> " + e.Cause.Error()
}

// WithRedirect returns a copy of e pointing the client at route.
func (e *ApiErr) WithRedirect(route string) *ApiErr {
	clone := *e
	clone.Redirect = route
	return &clone
}

func NewNotFoundError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: fmt.Errorf("%s: %w", message, ErrNotFound)}
}

// NewRouteNotFoundError answers requests for pages that do not exist by
// sending the client home.
func NewRouteNotFoundError(path string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%w: %w", ErrRouteNotFound, ErrNotFound),
		Details:    fmt.Sprintf("No page at %s", path),
		Redirect:   "/",
	}
}

func NewMethodNotAllowedError(method, path string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusMethodNotAllowed,
		err:        ErrMethodNotFound,
		Details:    fmt.Sprintf("%s is not supported on %s", method, path),
	}
}

func NewInternalError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusInternalServerError, err: errors.New(message)}
}

func NewInternalErrorWithCause(message string, cause error) *ApiErr {
	e := NewInternalError(message)
	e.Cause = cause
	return e
}

func NewCORSError(origin string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrCORSBlocked,
		Details:    fmt.Sprintf("Origin '%s' is not allowed by CORS policy", origin),
	}
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
