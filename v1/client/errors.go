package client

import "errors"

var (
	// ErrUnsupportedOperation is returned by LocalClient for operations that
	// need a remote source.
	ErrUnsupportedOperation = errors.New("client: operation not supported by local client")

	// ErrNoSources is returned when a client is created without source URLs.
	ErrNoSources = errors.New("client: at least one source URL is required")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("client: invalid configuration")
)

// IsUnsupportedOperation reports whether err is ErrUnsupportedOperation.
func IsUnsupportedOperation(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation)
}
