package transport

import (
	"errors"
	"fmt"
)

// ErrFetchFailed is matched by every *Error.
var ErrFetchFailed = errors.New("transport: fetch failed")

// Error is returned when a source could not be fetched.
type Error struct {
	// URL is the source that was requested.
	URL string

	// StatusCode is the last HTTP status received, or 0 when no response
	// arrived.
	StatusCode int

	// Attempts is the number of requests made.
	Attempts int

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("transport: fetch %s: status %d after %d attempt(s): %v", e.URL, e.StatusCode, e.Attempts, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("transport: fetch %s: status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	default:
		return fmt.Sprintf("transport: fetch %s: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports true for ErrFetchFailed.
func (e *Error) Is(target error) bool {
	return target == ErrFetchFailed
}

// IsFetchError reports whether err is, or wraps, a transport *Error.
func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

// StatusCode extracts the HTTP status from a transport error, or 0.
func StatusCode(err error) int {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.StatusCode
	}
	return 0
}
