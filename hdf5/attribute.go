package hdf5

import (
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-odim/internal/dtype"
	"github.com/robert-malhotra/go-odim/internal/message"
)

// Attribute represents an HDF5 attribute attached to a dataset or group.
type Attribute struct {
	msg  *message.Attribute
	file *File
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.msg.Name
}

// Shape returns the dimensions of the attribute value, nil for a scalar.
func (a *Attribute) Shape() []uint64 {
	if a.msg.Dataspace.IsScalar() {
		return nil
	}
	return a.msg.Dataspace.Dims
}

// NumElements returns the total number of elements.
func (a *Attribute) NumElements() uint64 {
	return a.msg.Dataspace.NumElements()
}

// IsScalar returns true if the attribute is a scalar value.
func (a *Attribute) IsScalar() bool {
	return a.msg.Dataspace.IsScalar()
}

// GoType returns the Go element type matching the attribute's datatype.
func (a *Attribute) GoType() (reflect.Type, error) {
	return dtype.GoType(a.msg.Datatype)
}

// Read reads the attribute value into dest, a pointer to a slice.
func (a *Attribute) Read(dest interface{}) error {
	return dtype.Decode(a.msg.Datatype, a.msg.Data, a.NumElements(), dest, heapResolver{a.file})
}

// Native reads the attribute in the Go type that matches its stored
// datatype exactly: an int16 attribute is returned as int16, a fixed or
// variable length string as string. Scalars are returned as a single value,
// arrays as a slice of that type. Other datatype classes are reported with
// ErrUnsupported.
func (a *Attribute) Native() (interface{}, error) {
	elem, err := a.GoType()
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", a.Name(), err)
	}

	slice := reflect.New(reflect.SliceOf(elem))
	if err := a.Read(slice.Interface()); err != nil {
		return nil, fmt.Errorf("reading attribute %q: %w", a.Name(), err)
	}

	vals := slice.Elem()
	if a.IsScalar() {
		if vals.Len() == 0 {
			return nil, fmt.Errorf("attribute %q: no values", a.Name())
		}
		return vals.Index(0).Interface(), nil
	}
	return vals.Interface(), nil
}
