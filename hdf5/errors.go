// Package hdf5 provides a pure Go implementation for reading and writing HDF5 files.
//
// Reading goes through Open, which exposes the group hierarchy, attributes and
// datasets of an existing file. Writing goes through Create, which returns a
// Writer that emits a complete object tree bottom-up: children are written
// first and their addresses are linked into the parent when the parent is
// written.
package hdf5

import (
	"errors"

	"github.com/robert-malhotra/go-odim/internal/message"
)

// Common errors
var (
	ErrNotHDF5     = errors.New("not an HDF5 file")
	ErrNotFound    = errors.New("object not found")
	ErrNotDataset  = errors.New("object is not a dataset")
	ErrNotGroup    = errors.New("object is not a group")
	ErrUnsupported = message.ErrUnsupported
	ErrInvalidPath = errors.New("invalid path")
	ErrClosed      = errors.New("file is closed")
	ErrLinkDepth   = errors.New("maximum link depth exceeded")
)

// MaxLinkDepth is the maximum number of soft links that can be followed
// in a single path resolution. This prevents stack overflow from deeply nested links.
const MaxLinkDepth = 100
