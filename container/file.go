package container

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-odim/hdf5"
)

// File is an attribute file held in memory.
type File struct {
	path   string
	mode   Mode
	root   *Node
	src    *hdf5.File // source of datasets not loaded yet
	log    logrus.FieldLogger
	dirty  bool
	closed bool
}

// Open opens an existing file. A missing or unreadable file fails with a
// *StorageError.
func Open(path string, mode Mode, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	src, err := hdf5.Open(path)
	if err != nil {
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}

	f := &File{
		path: path,
		mode: mode,
		src:  src,
		log:  o.log.WithField("path", path),
	}
	f.root = newNode(f, nil, "")

	if err := f.load(); err != nil {
		src.Close()
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}

	f.log.WithField("mode", mode).Debug("opened container")
	return f, nil
}

// Create starts a new, empty file at path. Nothing is written until the
// file is flushed or closed, but the location is checked to be writable
// right away.
func Create(path string, opts ...Option) (*File, error) {
	if err := checkWritable(path); err != nil {
		return nil, &StorageError{Op: "create", Path: path, Err: err}
	}

	f := New(opts...)
	f.path = path
	f.log = f.log.WithField("path", path)
	f.log.Debug("created container")
	return f, nil
}

// New returns an empty in-memory file without a path. Use SaveAs to write it.
func New(opts ...Option) *File {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	f := &File{
		mode:  ReadWrite,
		log:   o.log,
		dirty: true,
	}
	f.root = newNode(f, nil, "")
	return f
}

// Root returns the root group.
func (f *File) Root() *Node {
	return f.root
}

// Path returns the path of the file, or "" for an in-memory file.
func (f *File) Path() string {
	return f.path
}

// Mode returns the mode the file was opened with.
func (f *File) Mode() Mode {
	return f.mode
}

// Modified reports whether the file has changes that were not flushed.
func (f *File) Modified() bool {
	return f.dirty
}

// Flush writes the file to its path.
func (f *File) Flush() error {
	if f.closed {
		return ErrClosed
	}
	if f.mode == ReadOnly {
		return ErrReadOnly
	}
	if f.path == "" {
		return &StorageError{Op: "flush", Err: errors.New("file has no path")}
	}
	return f.persist(f.path)
}

// SaveAs writes the file to path, which becomes the file's path.
func (f *File) SaveAs(path string) error {
	if f.closed {
		return ErrClosed
	}
	if err := f.persist(path); err != nil {
		return err
	}
	f.path = path
	f.mode = ReadWrite
	return nil
}

// Close releases the file. Modified read-write files are flushed first.
func (f *File) Close() error {
	if f.closed {
		return nil
	}

	var err error
	if f.mode == ReadWrite && f.dirty && f.path != "" {
		err = f.persist(f.path)
	}

	f.closed = true
	if f.src != nil {
		err = errors.Join(err, f.src.Close())
		f.src = nil
	}
	return err
}

// Discard releases the file without writing pending changes.
func (f *File) Discard() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.dirty = false
	if f.src != nil {
		err := f.src.Close()
		f.src = nil
		return err
	}
	return nil
}

func (f *File) mutable() error {
	if f.closed {
		return ErrClosed
	}
	if f.mode == ReadOnly {
		return ErrReadOnly
	}
	return nil
}

func (f *File) touch() {
	f.dirty = true
}

// checkWritable creates and removes a scratch file next to path.
func checkWritable(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}
