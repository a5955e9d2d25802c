package hdf5

import (
	"fmt"
	"os"
	"reflect"

	"github.com/robert-malhotra/go-odim/internal/alloc"
	"github.com/robert-malhotra/go-odim/internal/binary"
	"github.com/robert-malhotra/go-odim/internal/dtype"
	"github.com/robert-malhotra/go-odim/internal/message"
	"github.com/robert-malhotra/go-odim/internal/object"
	"github.com/robert-malhotra/go-odim/internal/superblock"
)

// sizes are the address and length widths of written files.
var sizes = binary.Sizes{Offset: 8, Length: 8}

// Attr is a named attribute value to attach to a written object.
// The value can be a scalar or slice of: int8-64, uint8-64, float32,
// float64, string.
type Attr struct {
	Name  string
	Value interface{}
}

// Link names a previously written object inside a group.
type Link struct {
	Name    string
	Address uint64
}

// Writer writes a new HDF5 file object by object. Objects must be written
// before the group that links them, and the root group last; Finish then
// points the superblock at the root.
type Writer struct {
	path      string
	file      *os.File
	allocator *alloc.Allocator
	done      bool
}

// Create creates (or truncates) the HDF5 file at path and returns a Writer
// for it. The file uses a version 3 superblock and version 2 object headers.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{
		path: path,
		file: f,
		// Objects start right after the superblock, which is written last.
		allocator: alloc.New(superblock.EncodedSize),
	}, nil
}

// Path returns the path of the file being written.
func (w *Writer) Path() string {
	return w.path
}

// WriteDataset writes a contiguous dataset with the given dimensions and
// attributes and returns the address of its object header. data must be a
// slice of a numeric type holding exactly the product of dims elements; an
// empty dims writes a scalar holding a single element.
func (w *Writer) WriteDataset(data interface{}, dims []uint64, attrs []Attr) (uint64, error) {
	if w.done {
		return 0, ErrClosed
	}

	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Slice {
		return 0, fmt.Errorf("dataset data must be a slice, got %T", data)
	}
	numElements := uint64(1)
	for _, d := range dims {
		numElements *= d
	}
	if uint64(val.Len()) != numElements {
		return 0, fmt.Errorf("dataset has %d elements, dimensions %v need %d", val.Len(), dims, numElements)
	}

	elemType := val.Type().Elem()
	if elemType.Kind() == reflect.String {
		return 0, fmt.Errorf("string datasets: %w", ErrUnsupported)
	}
	datatype, err := dtype.FromGoType(elemType)
	if err != nil {
		return 0, fmt.Errorf("creating datatype: %w", err)
	}
	raw, err := dtype.Encode(data)
	if err != nil {
		return 0, fmt.Errorf("encoding data: %w", err)
	}

	dataAddr, err := w.write(raw)
	if err != nil {
		return 0, fmt.Errorf("writing data: %w", err)
	}

	dataspace := message.NewScalarDataspace()
	if len(dims) > 0 {
		dataspace = message.NewDataspace(dims)
	}
	msgs := []message.Encoder{dataspace, datatype, message.NewContiguousLayout(dataAddr, uint64(len(raw)))}
	if msgs, err = appendAttributes(msgs, attrs); err != nil {
		return 0, err
	}
	return w.writeHeader(msgs)
}

// WriteGroup writes a group holding hard links to the given objects and
// returns the address of its object header.
func (w *Writer) WriteGroup(links []Link, attrs []Attr) (uint64, error) {
	if w.done {
		return 0, ErrClosed
	}

	msgs := []message.Encoder{message.NewCompactLinkInfo(), &message.GroupInfo{}}
	for _, l := range links {
		if l.Name == "" {
			return 0, fmt.Errorf("link name cannot be empty")
		}
		msgs = append(msgs, message.NewHardLink(l.Name, l.Address))
	}
	msgs, err := appendAttributes(msgs, attrs)
	if err != nil {
		return 0, err
	}
	return w.writeHeader(msgs)
}

// Finish records root as the root group, writes the superblock and closes
// the file.
func (w *Writer) Finish(root uint64) error {
	if w.done {
		return ErrClosed
	}
	w.done = true

	if err := w.allocator.Validate(); err != nil {
		w.file.Close()
		return fmt.Errorf("file layout: %w", err)
	}
	sb := &superblock.Superblock{Root: root, EOF: w.allocator.EOFAddr()}
	if _, err := w.file.WriteAt(sb.Encode(), 0); err != nil {
		w.file.Close()
		return fmt.Errorf("writing superblock: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Abort closes and removes the partially written file.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.file.Close()
	return os.Remove(w.path)
}

// write stores b at the end of the file and returns its address.
func (w *Writer) write(b []byte) (uint64, error) {
	addr := w.allocator.Alloc(uint64(len(b)))
	if _, err := w.file.WriteAt(b, int64(addr)); err != nil {
		return 0, err
	}
	return addr, nil
}

func (w *Writer) writeHeader(msgs []message.Encoder) (uint64, error) {
	header, err := object.Encode(msgs, sizes)
	if err != nil {
		return 0, err
	}
	addr, err := w.write(header)
	if err != nil {
		return 0, fmt.Errorf("writing object header: %w", err)
	}
	return addr, nil
}

func appendAttributes(msgs []message.Encoder, attrs []Attr) ([]message.Encoder, error) {
	for _, attr := range attrs {
		msg, err := attributeMessage(attr.Name, attr.Value)
		if err != nil {
			return nil, fmt.Errorf("creating attribute %q: %w", attr.Name, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// attributeMessage encodes a scalar or one-dimensional attribute. Strings
// are stored fixed length and null terminated, every element of a string
// array padded to the longest.
func attributeMessage(name string, value interface{}) (*message.Attribute, error) {
	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	switch {
	case val.Kind() == reflect.String:
		s := val.String()
		data := append([]byte(s), 0)
		return message.NewAttribute(name, message.NewString(uint32(len(data)), message.PadNullTerm), message.NewScalarDataspace(), data), nil

	case val.Kind() == reflect.Slice && val.Type().Elem().Kind() == reflect.String:
		n := val.Len()
		if n == 0 {
			return nil, fmt.Errorf("empty string array not supported")
		}
		width := 0
		for i := 0; i < n; i++ {
			if l := len(val.Index(i).String()); l > width {
				width = l
			}
		}
		width++
		data := make([]byte, n*width)
		for i := 0; i < n; i++ {
			copy(data[i*width:], val.Index(i).String())
		}
		return message.NewAttribute(name, message.NewString(uint32(width), message.PadNullTerm), message.NewDataspace([]uint64{uint64(n)}), data), nil
	}

	dataspace := message.NewScalarDataspace()
	elemType := val.Type()
	if val.Kind() == reflect.Slice || val.Kind() == reflect.Array {
		dataspace = message.NewDataspace([]uint64{uint64(val.Len())})
		elemType = elemType.Elem()
	}
	datatype, err := dtype.FromGoType(elemType)
	if err != nil {
		return nil, fmt.Errorf("unsupported attribute type %v: %w", elemType, err)
	}
	data, err := dtype.Encode(val.Interface())
	if err != nil {
		return nil, fmt.Errorf("encoding attribute value: %w", err)
	}
	return message.NewAttribute(name, datatype, dataspace, data), nil
}
