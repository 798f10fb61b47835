package document

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced by document and editor operations.
type Kind string

const (
	KindRange    Kind = "range"
	KindCapacity Kind = "capacity"
	KindIO       Kind = "io"
	KindRender   Kind = "render"
)

// Error carries a Kind together with the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func RangeError(op string, err error) *Error {
	return NewError(KindRange, op, err)
}

func CapacityError(op string, err error) *Error {
	return NewError(KindCapacity, op, err)
}

func IOError(op string, err error) *Error {
	return NewError(KindIO, op, err)
}

func RenderFailure(op string, err error) *Error {
	return NewError(KindRender, op, err)
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Kind == kind {
			return true
		}
		err = de.Err
	}
	return false
}

// KindOf returns the outermost classification of err, or "" when unclassified.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
