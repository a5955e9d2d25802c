package odim

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-odim/container"
)

// ErrFormat is matched by every *FormatError.
var ErrFormat = errors.New("odim format error")

// Kinds of format errors, carried by FormatError.Kind.
var (
	ErrUnknownConvention     = errors.New("unknown conventions")
	ErrMissingGroup          = errors.New("missing group")
	ErrMissingDataset        = errors.New("missing dataset")
	ErrMissingAttribute      = errors.New("missing attribute")
	ErrInvalidAttributeValue = errors.New("invalid attribute value")
)

// Errors shared with the container package so that either name matches.
var (
	ErrTypeMismatch      = container.ErrTypeMismatch
	ErrDimensionMismatch = container.ErrDimensionMismatch
	ErrReadOnly          = container.ErrReadOnly
	ErrStorageIO         = container.ErrStorageIO
)

var (
	// ErrUnsupported is returned for an operation that does not apply to
	// the value it was called on, such as the elevation of a CAPPI product.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrInvalidArgument is returned for arguments out of their domain.
	ErrInvalidArgument = errors.New("invalid argument")
)

// FormatError reports a file that does not follow the ODIM_H5 layout.
type FormatError struct {
	Kind error  // ErrUnknownConvention, ErrMissingGroup, ...
	Path string // node the problem was found at
	Name string // attribute or member name, if any
	Err  error  // underlying cause, if any
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" || e.Name != "" {
		b.WriteString(" ")
		b.WriteString(joinName(e.Path, e.Name))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErr(kind error, path, name string, cause error) *FormatError {
	return &FormatError{Kind: kind, Path: path, Name: name, Err: cause}
}

func missingAttr(path, name string) *FormatError {
	return formatErr(ErrMissingAttribute, path, name, nil)
}

func joinName(path, name string) string {
	switch {
	case name == "":
		return path
	case path == "" || path == "/":
		return "/" + name
	}
	return path + "/" + name
}
