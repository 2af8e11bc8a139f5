package store

import (
	"errors"
	"fmt"
)

// Kind classifies a store failure.
type Kind int

const (
	// KindIO covers persistence-layer failures that are neither transport
	// nor constraint problems.
	KindIO Kind = iota
	// KindUnavailable marks connection or transport failures.
	KindUnavailable
	// KindConstraint marks a violated uniqueness invariant. It should not
	// occur while writes go through the atomic upsert.
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindUnavailable:
		return "unavailable"
	case KindConstraint:
		return "constraint"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a classified store failure.
type Error struct {
	Kind Kind
	Op   string // "set", "get" or "init"
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tally/store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, looking through wrapped errors.
// Errors that carry no kind report KindIO.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindIO
}
