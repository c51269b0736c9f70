// Package direrrors defines the typed error kinds used across the
// document layer, following the small wrapped-error convention the
// teacher storage engine uses instead of bare fmt.Errorf.
package direrrors

import (
	"github.com/cockroachdb/errors"
)

// CorruptionError wraps a fatal, non-recoverable storage fault: a bad
// block, a malformed sindex definition, a failed deserialization. The
// enclosing operation must abort rather than attempt repair.
type CorruptionError struct {
	Err error
}

func (c CorruptionError) Unwrap() error { return c.Err }
func (c CorruptionError) Error() string { return c.Err.Error() }

// NewCorruption builds a CorruptionError from a format string.
func NewCorruption(format string, args ...interface{}) error {
	return CorruptionError{Err: errors.Newf(format, args...)}
}

// PreconditionError indicates caller misuse: a missing primary-key
// attribute, an empty primary key reaching the sindex layer. These are
// assertion-level failures, not operational faults.
type PreconditionError struct {
	Err error
}

func (p PreconditionError) Unwrap() error { return p.Err }
func (p PreconditionError) Error() string { return p.Err.Error() }

// NewPrecondition builds a PreconditionError from a format string.
func NewPrecondition(format string, args ...interface{}) error {
	return PreconditionError{Err: errors.Newf(format, args...)}
}

// UserError wraps a recoverable user-domain fault: a non-object
// transform result, a primary-key change, or an exception raised by a
// user-supplied transform/indexing function. Callers catch these and
// fold them into a response rather than letting them escape.
type UserError struct {
	Err error
}

func (u UserError) Unwrap() error { return u.Err }
func (u UserError) Error() string { return u.Err.Error() }

// NewUser builds a UserError from a format string.
func NewUser(format string, args ...interface{}) error {
	return UserError{Err: errors.Newf(format, args...)}
}

// IsCorruption reports whether err (or anything it wraps) is a CorruptionError.
func IsCorruption(err error) bool {
	var c CorruptionError
	return errors.As(err, &c)
}

// IsUser reports whether err (or anything it wraps) is a UserError.
func IsUser(err error) bool {
	var u UserError
	return errors.As(err, &u)
}
