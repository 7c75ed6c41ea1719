package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrLocked              = errors.New("lock is held by another owner")
	ErrSessionClosed       = errors.New("store session is closed")
)

type ConstraintKind string

const (
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintUnique     ConstraintKind = "unique"
)

// ConstraintError reports a referential-integrity or uniqueness violation
// raised by the store. It matches ErrConstraintViolation with errors.Is.
type ConstraintError struct {
	Kind       ConstraintKind
	Table      string
	Constraint string // store-level constraint or key name, may be empty
	Err        error  // underlying driver error, may be nil
}

func (e *ConstraintError) Error() string {
	msg := fmt.Sprintf("%s constraint violated on %s", e.Kind, e.Table)
	if e.Constraint != "" {
		msg += " (" + e.Constraint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraintViolation }

func (e *ConstraintError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
