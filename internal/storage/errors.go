package storage

import (
	"errors"
	"fmt"
)

// NotFoundError reports a lookup for a node ID that does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node not found: %s", e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StorageError wraps a backend I/O failure with the operation and path
// that produced it.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError reports a node that violates a data-model invariant.
type ValidationError struct {
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid node %q: %s: %s", e.ID, e.Field, e.Reason)
}

// PartialExpansionError reports a fractal expansion that persisted some
// children before failing. Succeeded lists the child IDs that were
// written; re-running the expansion is safe because child derivation is
// idempotent.
type PartialExpansionError struct {
	BaseID    string
	Succeeded []string
	Err       error
}

func (e *PartialExpansionError) Error() string {
	return fmt.Sprintf("partial expansion of %s (%d children written): %v",
		e.BaseID, len(e.Succeeded), e.Err)
}

func (e *PartialExpansionError) Unwrap() error {
	return e.Err
}
