// Package errkind classifies pipeline stage errors into a handful of
// kinds the worker loop maps to retry-vs-fail behavior, instead of
// sentinel string matching scattered across stage implementations.
package errkind

import "fmt"

type Kind string

const (
	Transient          Kind = "transient"
	Permanent          Kind = "permanent"
	Policy             Kind = "policy"
	SpawnRefusal       Kind = "spawn_refusal"
	InvariantViolation Kind = "invariant_violation"
)

// Error wraps an underlying error with its classification so the worker
// loop can decide retry vs. terminal status without re-deriving it.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func Transientf(format string, args ...interface{}) error {
	return &Error{Kind: Transient, Err: fmt.Errorf(format, args...)}
}

func Permanentf(format string, args ...interface{}) error {
	return &Error{Kind: Permanent, Err: fmt.Errorf(format, args...)}
}

func Invariantf(format string, args ...interface{}) error {
	return &Error{Kind: InvariantViolation, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the classification, defaulting unclassified errors (e.g.
// straight from an external library) to Transient — the safest default
// under a bounded retry budget.
func KindOf(err error) Kind {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind
	}
	return Transient
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
