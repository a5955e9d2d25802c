package hdf5

import (
	"fmt"
	"path"
	"reflect"

	"github.com/robert-malhotra/go-odim/internal/dtype"
	"github.com/robert-malhotra/go-odim/internal/layout"
	"github.com/robert-malhotra/go-odim/internal/message"
	"github.com/robert-malhotra/go-odim/internal/object"
)

// Dataset represents an HDF5 dataset.
type Dataset struct {
	file    *File
	path    string
	header  *object.Header
	storage layout.Dataset
}

func newDataset(f *File, path string, header *object.Header) (*Dataset, error) {
	ds := &Dataset{file: f, path: path, header: header}

	var ok bool
	if ds.storage.Dataspace, ok = header.Find(message.TypeDataspace).(*message.Dataspace); !ok {
		return nil, fmt.Errorf("dataset %s: no usable dataspace message", path)
	}
	switch m := header.Find(message.TypeDatatype).(type) {
	case *message.Datatype:
		ds.storage.Datatype = m
	case *message.Shared:
		return nil, fmt.Errorf("dataset %s: shared datatype: %w", path, ErrUnsupported)
	default:
		return nil, fmt.Errorf("dataset %s: no datatype message", path)
	}
	if ds.storage.Layout, ok = header.Find(message.TypeLayout).(*message.Layout); !ok {
		return nil, fmt.Errorf("dataset %s: no layout message", path)
	}
	ds.storage.Filters, _ = header.Find(message.TypeFilterPipeline).(*message.FilterPipeline)
	return ds, nil
}

// Name returns the dataset name (last component of path).
func (d *Dataset) Name() string {
	return path.Base(d.path)
}

// Path returns the full path to this dataset.
func (d *Dataset) Path() string {
	return d.path
}

// Shape returns the dimensions of the dataset, nil for a scalar.
func (d *Dataset) Shape() []uint64 {
	if d.storage.Dataspace.IsScalar() {
		return nil
	}
	return d.storage.Dataspace.Dims
}

// NumElements returns the total number of elements.
func (d *Dataset) NumElements() uint64 {
	return d.storage.Dataspace.NumElements()
}

// IsScalar returns true if the dataset is a scalar (single value).
func (d *Dataset) IsScalar() bool {
	return d.storage.Dataspace.IsScalar()
}

// GoType returns the Go type that corresponds to this dataset's datatype.
func (d *Dataset) GoType() (reflect.Type, error) {
	return dtype.GoType(d.storage.Datatype)
}

// Read reads all data from the dataset into dest, a pointer to a slice.
// Numeric data converts to any numeric element type.
func (d *Dataset) Read(dest interface{}) error {
	if d.file.closed {
		return ErrClosed
	}
	raw, err := layout.Read(d.file.reader, d.storage)
	if err != nil {
		return fmt.Errorf("reading %s: %w", d.path, err)
	}
	if err := dtype.Decode(d.storage.Datatype, raw, d.NumElements(), dest, heapResolver{d.file}); err != nil {
		return fmt.Errorf("converting %s: %w", d.path, err)
	}
	return nil
}

// Native reads the whole dataset into a newly allocated slice whose element
// type matches the stored datatype.
func (d *Dataset) Native() (interface{}, error) {
	elem, err := d.GoType()
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", d.path, err)
	}
	if elem.Kind() == reflect.String {
		return nil, fmt.Errorf("dataset %s: string elements: %w", d.path, ErrUnsupported)
	}

	slice := reflect.New(reflect.SliceOf(elem))
	if err := d.Read(slice.Interface()); err != nil {
		return nil, err
	}
	return slice.Elem().Interface(), nil
}

// Attrs returns the attribute names for this dataset.
func (d *Dataset) Attrs() []string {
	return attrNames(d.header)
}

// Attr returns an attribute by name, or nil if not found.
func (d *Dataset) Attr(name string) *Attribute {
	return findAttr(d.header, d.file, name)
}

// HasAttr returns true if the dataset has an attribute with the given name.
func (d *Dataset) HasAttr(name string) bool {
	return d.Attr(name) != nil
}
