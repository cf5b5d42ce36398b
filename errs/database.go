package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotFound         = errors.New("not found")
	ErrStoreQuery       = errors.New("document store query failed")
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrStoreTimeout     = errors.New("document store timed out")
)

// StoreFailure is the class of a document store error. Drivers classify;
// errs only maps the class to a status.
type StoreFailure int

const (
	StoreQueryFailed StoreFailure = iota
	StoreDuplicate
	StoreUnavailable
	StoreTimeout
)

// NewDatabaseError reports a failed store operation on target, e.g.
// ("insert into", "blogs").
func NewDatabaseError(operation, target string, kind StoreFailure, cause error) *ApiErr {
	e := &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStoreQuery,
		Details:    fmt.Sprintf("Failed to %s %s", operation, target),
		Cause:      cause,
	}

	switch kind {
	case StoreDuplicate:
		e.StatusCode = http.StatusConflict
		e.err = fmt.Errorf("%s %w", target, ErrAlreadyExists)
	case StoreUnavailable:
		e.StatusCode = http.StatusServiceUnavailable
		e.err = ErrStoreUnavailable
		e.Details = "Unable to reach the document store"
	case StoreTimeout:
		e.StatusCode = http.StatusGatewayTimeout
		e.err = ErrStoreTimeout
	}
	return e
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrStoreTimeout)
}
