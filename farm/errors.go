package farm

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError is the only non-fatal error kind the handlers return for
// lookups: a missing id, or a listing, search or lookup with nothing to show.
// Anything else coming out of a handler is a *farmstore.InternalError or an
// *InvalidArgumentError.
type NotFoundError struct {
	Msg string
}

func notFoundf(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type InvalidArgumentError struct {
	Arg string
	Msg string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Arg, e.Msg)
}
