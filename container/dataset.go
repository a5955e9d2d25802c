package container

import (
	"fmt"
	"path"
	"reflect"

	"github.com/robert-malhotra/go-odim/hdf5"
)

// Dataset is a two-dimensional grid of numeric elements stored row by row.
// Its attributes live on the Node returned by Node.
type Dataset struct {
	node   *Node
	elem   ElemType
	height int
	width  int
	data   interface{}   // []T with height*width elements, nil until loaded
	src    *hdf5.Dataset // lazy source of data
}

// CreateDataset creates a zero filled height x width dataset named name. An
// existing dataset of that name is replaced.
func (n *Node) CreateDataset(name string, elem ElemType, height, width int) (*Dataset, error) {
	if !elem.Valid() {
		return nil, fmt.Errorf("dataset %s: %w: %v", name, ErrUnsupportedType, elem)
	}
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("dataset %s: invalid dimensions %dx%d", name, height, width)
	}

	if c := n.Child(name); c != nil {
		if !c.IsDataset() {
			return nil, fmt.Errorf("%s: group %w", c.Path(), ErrExists)
		}
		if err := n.RemoveChild(name); err != nil {
			return nil, err
		}
	}
	if err := n.addable(name); err != nil {
		return nil, err
	}

	c := newNode(n.file, n, name)
	c.dataset = &Dataset{
		node:   c,
		elem:   elem,
		height: height,
		width:  width,
		data:   reflect.MakeSlice(reflect.SliceOf(elem.GoType()), height*width, height*width).Interface(),
	}
	n.children = append(n.children, c)
	n.file.touch()
	return c.dataset, nil
}

// Dataset returns the child dataset named name.
func (n *Node) Dataset(name string) (*Dataset, error) {
	c := n.Child(name)
	if c == nil {
		return nil, fmt.Errorf("dataset %s: %w", path.Join(n.Path(), name), ErrNotFound)
	}
	if !c.IsDataset() {
		return nil, fmt.Errorf("%s is not a dataset: %w", c.Path(), ErrNotFound)
	}
	return c.dataset, nil
}

// Node returns the node holding the dataset's attributes.
func (d *Dataset) Node() *Node {
	return d.node
}

// ElemType returns the element type.
func (d *Dataset) ElemType() ElemType {
	return d.elem
}

// Height returns the number of rows.
func (d *Dataset) Height() int {
	return d.height
}

// Width returns the number of columns.
func (d *Dataset) Width() int {
	return d.width
}

// Len returns the number of elements.
func (d *Dataset) Len() int {
	return d.height * d.width
}

// Read copies the dataset into buf, which must be a slice of the element
// type whose length equals Len.
func (d *Dataset) Read(buf interface{}) error {
	dst, err := d.checkBuffer(buf)
	if err != nil {
		return err
	}
	data, err := d.values()
	if err != nil {
		return err
	}
	reflect.Copy(dst, reflect.ValueOf(data))
	return nil
}

// Write replaces the dataset contents with buf, which must be a slice of the
// element type whose length equals Len.
func (d *Dataset) Write(buf interface{}) error {
	if err := d.node.file.mutable(); err != nil {
		return err
	}
	src, err := d.checkBuffer(buf)
	if err != nil {
		return err
	}

	data := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
	reflect.Copy(data, src)
	d.data = data.Interface()
	d.src = nil
	d.node.file.touch()
	return nil
}

func (d *Dataset) checkBuffer(buf interface{}) (reflect.Value, error) {
	v := reflect.ValueOf(buf)
	if v.Kind() != reflect.Slice {
		return reflect.Value{}, fmt.Errorf("dataset %s: buffer %T: %w", d.node.Path(), buf, ErrTypeMismatch)
	}
	if v.Type().Elem() != d.elem.GoType() {
		return reflect.Value{}, fmt.Errorf("dataset %s: buffer %T for %v elements: %w", d.node.Path(), buf, d.elem, ErrTypeMismatch)
	}
	if v.Len() != d.Len() {
		return reflect.Value{}, fmt.Errorf("dataset %s: buffer of %d elements for %dx%d: %w",
			d.node.Path(), v.Len(), d.height, d.width, ErrDimensionMismatch)
	}
	return v, nil
}

// values returns the dataset contents, loading them from the source file on
// first use.
func (d *Dataset) values() (interface{}, error) {
	if d.data != nil {
		return d.data, nil
	}
	if d.src == nil {
		return nil, fmt.Errorf("dataset %s has no data", d.node.Path())
	}

	data, err := d.src.Native()
	if err != nil {
		return nil, &StorageError{Op: "read", Path: d.node.Path(), Err: err}
	}
	if ElemTypeOf(data) != d.elem || reflect.ValueOf(data).Len() != d.Len() {
		return nil, &StorageError{Op: "read", Path: d.node.Path(),
			Err: fmt.Errorf("stored data does not match %v %dx%d", d.elem, d.height, d.width)}
	}

	d.data = data
	d.src = nil
	return data, nil
}
