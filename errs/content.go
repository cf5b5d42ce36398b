package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Content pipeline errors. Each maps onto the way a page surfaces a failure:
// fetch failures become a page-level message, write failures an inline
// message next to the form, and missing records a redirect to the listing.
var (
	ErrFetch        = errors.New("fetch failed")
	ErrWrite        = errors.New("write failed")
	ErrUpload       = errors.New("upload failed")
	ErrBusy         = errors.New("operation already in progress")
	ErrBlobNotFound = errors.New("blob not found")
)

// NewFetchError wraps a store read failure. The user has to reload; nothing is retried.
func NewFetchError(entity string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrFetch,
		Details:    fmt.Sprintf("Failed to fetch %s. Please try again later.", entity),
		Cause:      cause,
	}
}

// NewWriteError wraps a failed create, update or delete.
func NewWriteError(operation, entity string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrWrite,
		Details:    fmt.Sprintf("Failed to %s %s. Please try again.", operation, entity),
		Cause:      cause,
	}
}

func NewUploadError(fileName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        fmt.Errorf("%w: %w", ErrWrite, ErrUpload),
		Details:    fmt.Sprintf("Failed to upload %s. Nothing was saved.", fileName),
		Cause:      cause,
		Field:      "image",
	}
}

// NewRecordNotFoundError reports a missing single record and points the
// client back at the listing it came from.
func NewRecordNotFoundError(entity, listing string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
		Details:    fmt.Sprintf("%s not found. Please check the URL.", entity),
		Redirect:   listing,
	}
}

func NewBusyError(target string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%w: %w", ErrConflict, ErrBusy),
		Details:    fmt.Sprintf("%s is already being processed", target),
	}
}

func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetch)
}

func IsWriteError(err error) bool {
	return errors.Is(err, ErrWrite)
}

func IsUploadError(err error) bool {
	return errors.Is(err, ErrUpload)
}

func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}
