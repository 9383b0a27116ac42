package cache

import "errors"

var (
	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("cache: engine closed")

	// ErrNoSnapshot is returned when a cold load succeeds without producing a
	// snapshot, e.g. a version-based source that has no versions yet.
	ErrNoSnapshot = errors.New("cache: source has no schema snapshot")
)
