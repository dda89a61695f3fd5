package core

import (
	"errors"
	"fmt"
)

// returned by operations the portal exposes no usable endpoint for.
var ErrNotImplemented = errors.New("not implemented")

// AuthenticationError covers bad credentials, a missing login token and
// content requested before Login succeeds.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// NetworkError wraps a transport-level failure. The portal is never
// retried automatically, callers decide whether a retry makes sense.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParsingError reports a structural element missing where the portal's
// markup contract guarantees one.
type ParsingError struct {
	Op      string
	Missing string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing %s: missing %s", e.Op, e.Missing)
}

// NotFoundError reports a record id with no corresponding detail page.
// The portal signals this with a missing wrapper element, not an HTTP
// status.
type NotFoundError struct {
	Kind string
	Id   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found with id %q", e.Kind, e.Id)
}
