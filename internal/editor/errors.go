package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a load or save is running and the request
	// would race with it.
	ErrBusy = errors.New("a load or save is in progress")

	// ErrNoDocument is returned when no document is open.
	ErrNoDocument = errors.New("no document is open")
)

// BatchError reports the image that stopped a batch insert. Pages inserted
// before it stay in the document.
type BatchError struct {
	Index    int // position of the failing path in the batch
	Path     string
	Inserted int
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("image %d (%s) failed after %d inserted: %v", e.Index+1, e.Path, e.Inserted, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
