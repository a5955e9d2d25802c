// Package container is a small in-memory model of a hierarchical attribute
// file backed by HDF5.
//
// A File is a tree of Nodes. Every node carries named, typed attributes and
// is either a group holding child nodes or a two-dimensional dataset. Files
// opened from disk load their attributes eagerly and their datasets on first
// access. Changes are only written when the file is flushed: the whole tree is
// written to a temporary file next to the target which then replaces it, so
// a failed flush leaves the previous file untouched.
package container

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrStorageIO is matched by every *StorageError.
	ErrStorageIO = errors.New("storage i/o error")

	// ErrNotFound is returned when a child, attribute or dataset does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExists is returned when a name is already taken by a node of another kind.
	ErrExists = errors.New("already exists")

	// ErrReadOnly is returned when a read-only file is modified.
	ErrReadOnly = errors.New("file is read-only")

	// ErrClosed is returned when a closed file is used.
	ErrClosed = errors.New("file is closed")

	// ErrTypeMismatch is returned when a buffer's element type differs from
	// the dataset's element type.
	ErrTypeMismatch = errors.New("element type mismatch")

	// ErrDimensionMismatch is returned when a buffer's size differs from the
	// dataset's dimensions.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnsupportedType is returned for values that cannot be stored.
	ErrUnsupportedType = errors.New("unsupported value type")
)

// StorageError reports a failure of the underlying file storage.
type StorageError struct {
	Op   string // open, create, flush, read
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorageIO.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageIO
}
