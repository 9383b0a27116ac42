package refresh

import "errors"

var (
	// ErrUnknownStrategy is returned by ByName for unsupported names.
	ErrUnknownStrategy = errors.New("refresh: unknown strategy")

	// ErrInvalidVersions is returned when a versions document cannot be decoded.
	ErrInvalidVersions = errors.New("refresh: invalid versions document")
)
