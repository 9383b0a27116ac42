package registry

import (
	"errors"
	"fmt"
)

// ErrSchemaParse is matched by every *ParseError.
var ErrSchemaParse = errors.New("registry: schema parse failed")

// ParseError reports a descriptor set that could not be turned into a Snapshot.
type ParseError struct {
	// File is the proto file being resolved, empty when the set itself could
	// not be decoded.
	File string
	Err  error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("registry: invalid descriptor set: %v", e.Err)
	}
	return fmt.Sprintf("registry: cannot resolve %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrSchemaParse
}

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	return errors.Is(err, ErrSchemaParse)
}
