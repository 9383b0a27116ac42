package decoder

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaNotFound is matched by every *NotFoundError.
	ErrSchemaNotFound = errors.New("decoder: schema not found")

	// ErrInvalidMessage is returned by Encode when the input does not fit the schema.
	ErrInvalidMessage = errors.New("decoder: message does not match schema")
)

// NotFoundError reports a schema name the client could not resolve.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("decoder: schema %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrSchemaNotFound
}

// IsSchemaNotFound reports whether err is, or wraps, a *NotFoundError.
func IsSchemaNotFound(err error) bool {
	return errors.Is(err, ErrSchemaNotFound)
}
