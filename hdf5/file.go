package hdf5

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robert-malhotra/go-odim/internal/binary"
	"github.com/robert-malhotra/go-odim/internal/heap"
	"github.com/robert-malhotra/go-odim/internal/object"
	"github.com/robert-malhotra/go-odim/internal/superblock"
)

// File represents an HDF5 file opened for reading.
type File struct {
	path       string
	file       *os.File
	reader     *binary.Reader
	superblock *superblock.Superblock
	global     *heap.Global
	root       *Group
	closed     bool
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening file: %w", err)
	}

	sb, err := superblock.Read(f, info.Size())
	if err != nil {
		f.Close()
		if errors.Is(err, superblock.ErrNoSignature) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotHDF5)
		}
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	hdf := &File{
		path:       path,
		file:       f,
		reader:     binary.NewReader(f, info.Size(), sb.Base, sb.Sizes),
		superblock: sb,
	}
	hdf.global = heap.NewGlobal(hdf.reader)

	root, err := hdf.openGroupAt(sb.Root, "/")
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	hdf.root = root

	return hdf, nil
}

// Close closes the file. Closing an already closed file is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.file.Close()
}

// Root returns the root group of the file.
func (f *File) Root() *Group {
	return f.root
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Version returns the superblock version.
func (f *File) Version() int {
	return int(f.superblock.Version)
}

// OpenGroup opens a group by path.
func (f *File) OpenGroup(path string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(path)
}

// OpenDataset opens a dataset by path.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(path)
}

func (f *File) openGroupAt(address uint64, path string) (*Group, error) {
	header, err := object.Read(f.reader, address)
	if err != nil {
		return nil, err
	}
	return &Group{file: f, path: path, header: header}, nil
}

func (f *File) openDatasetAt(address uint64, path string) (*Dataset, error) {
	header, err := object.Read(f.reader, address)
	if err != nil {
		return nil, err
	}
	return newDataset(f, path, header)
}

// resolve returns the string a variable-length element refers to: a length,
// the address of a global heap collection and an object index.
func (f *File) resolve(elem []byte) ([]byte, error) {
	d := f.reader.Decode(elem)
	n := d.U32()
	addr := d.Addr()
	index := d.U32()
	if err := d.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	obj, err := f.global.Object(addr, index)
	if err != nil {
		return nil, err
	}
	if uint64(len(obj)) > uint64(n) {
		obj = obj[:n]
	}
	return obj, nil
}

// heapResolver adapts File.resolve to the datatype converter.
type heapResolver struct{ f *File }

func (h heapResolver) Resolve(elem []byte) ([]byte, error) { return h.f.resolve(elem) }

// splitPath splits a path into its components, ignoring leading and
// trailing slashes.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// findByAbsolutePath resolves the target of a soft link. visited tracks the
// links followed so far to detect cycles.
func (f *File) findByAbsolutePath(absPath string, visited map[string]bool) (*linkResolution, error) {
	parts := splitPath(absPath)
	if len(parts) == 0 {
		return &linkResolution{address: f.superblock.Root}, nil
	}

	current := f.root
	for i, name := range parts {
		res, err := current.findChild(name, visited)
		if err != nil {
			return nil, fmt.Errorf("resolving %q in path %s: %w", name, absPath, err)
		}
		if i == len(parts)-1 {
			return res, nil
		}
		if res.isDataset {
			return nil, fmt.Errorf("%q is not a group in path %s", name, absPath)
		}
		next, err := f.openGroupAt(res.address, "/"+strings.Join(parts[:i+1], "/"))
		if err != nil {
			return nil, fmt.Errorf("opening group %q: %w", name, err)
		}
		current = next
	}
	return nil, ErrInvalidPath
}
