package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no catalog record has the requested id.
	ErrNotFound = errors.New("photo not found")

	// ErrDuplicateID is returned when an insert collides with an existing
	// record. Ids are generated, so hitting this means an invariant broke
	// somewhere upstream.
	ErrDuplicateID = errors.New("duplicate photo id")
)

// WriteError wraps a failed write to the blob directory or the catalog
// document. The catalog and blob store never leave a partially written
// file addressable when they return one of these.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("storage write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
