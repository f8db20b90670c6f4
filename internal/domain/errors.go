package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument signals a rejected input value.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStorage signals a failure of the underlying store.
	ErrStorage = errors.New("storage error")

	// ErrDocumentNotFound signals a missing document. Matches ErrNotFound.
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)
	// ErrPointNotFound signals a missing point. Matches ErrNotFound.
	ErrPointNotFound = fmt.Errorf("point %w", ErrNotFound)
	// ErrPageNotFound signals a page outside the document range. Matches ErrNotFound.
	ErrPageNotFound = fmt.Errorf("page %w", ErrNotFound)
	// ErrPointNameConflict signals a duplicate point name within a document. Matches ErrConflict.
	ErrPointNameConflict = fmt.Errorf("point name %w", ErrConflict)
)

// StorageError wraps a store failure with the operation that produced it.
// It matches both ErrStorage and the underlying cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// NewStorageError creates a storage error for op.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// InvalidArgument formats a validation message that matches ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
