package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a request path does not resolve to a live
// registry entry: either the suffix is absent from the store or the path
// does not belong under the mount prefix.
var ErrNotFound = errors.New("callback not found")

// CallbackError wraps a failure raised by a callback during invocation.
// It is the only recovered failure path in the registry: the entry's
// state is left untouched when it occurs.
type CallbackError struct {
	Key string
	Err error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback %q failed: %v", e.Key, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}
