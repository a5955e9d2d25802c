package container

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-odim/hdf5"
)

// load builds the node tree from the source file. Datasets are only
// described here; their contents are read on first use.
func (f *File) load() error {
	nodes := map[string]*Node{"/": f.root}

	return hdf5.Walk(f.src.Root(), func(p string, obj interface{}, err error) error {
		if err != nil {
			return err
		}

		if p == "/" {
			loadAttrs(f.root, f.src.Root(), f.log)
			return nil
		}

		parent, ok := nodes[path.Dir(p)]
		if !ok {
			// Below a dataset or a skipped node.
			return nil
		}
		name := path.Base(p)

		switch o := obj.(type) {
		case *hdf5.Group:
			n := newNode(f, parent, name)
			loadAttrs(n, o, f.log)
			parent.children = append(parent.children, n)
			nodes[p] = n

		case *hdf5.Dataset:
			elem, height, width, err := describe(o)
			if err != nil {
				f.log.WithField("node", p).WithError(err).Warn("skipping dataset")
				return nil
			}
			n := newNode(f, parent, name)
			n.dataset = &Dataset{node: n, elem: elem, height: height, width: width, src: o}
			loadAttrs(n, o, f.log)
			parent.children = append(parent.children, n)
		}
		return nil
	})
}

// attrSource is implemented by *hdf5.Group and *hdf5.Dataset.
type attrSource interface {
	Path() string
	Attrs() []string
	Attr(name string) *hdf5.Attribute
}

func loadAttrs(n *Node, src attrSource, log logrus.FieldLogger) {
	for _, name := range src.Attrs() {
		v, err := src.Attr(name).Native()
		if err == nil {
			v, err = normalizeAttr(v)
		}
		if err != nil {
			log.WithFields(logrus.Fields{"node": src.Path(), "attribute": name}).WithError(err).Warn("skipping attribute")
			continue
		}
		if _, ok := n.attrs[name]; !ok {
			n.order = append(n.order, name)
		}
		n.attrs[name] = v
	}
}

// describe maps a stored dataset onto a two-dimensional grid. Scalars become
// 1x1 and vectors a single row.
func describe(ds *hdf5.Dataset) (ElemType, int, int, error) {
	goType, err := ds.GoType()
	if err != nil {
		return Invalid, 0, 0, err
	}
	elem := elemTypeOfKind(goType.Kind())
	if elem == Invalid {
		return Invalid, 0, 0, fmt.Errorf("%w: element type %v", ErrUnsupportedType, goType)
	}

	shape := ds.Shape()
	switch len(shape) {
	case 0:
		return elem, 1, 1, nil
	case 1:
		if shape[0] == 0 {
			return Invalid, 0, 0, errors.New("empty dataset")
		}
		return elem, 1, int(shape[0]), nil
	case 2:
		if shape[0] == 0 || shape[1] == 0 {
			return Invalid, 0, 0, errors.New("empty dataset")
		}
		return elem, int(shape[0]), int(shape[1]), nil
	}
	return Invalid, 0, 0, fmt.Errorf("%w: rank %d", ErrUnsupportedType, len(shape))
}

// persist writes the tree to a temporary file in the directory of target and
// renames it over target once complete.
func (f *File) persist(target string) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return &StorageError{Op: "flush", Path: target, Err: err}
	}
	tmpName := tmp.Name()
	tmp.Close()

	w, err := hdf5.Create(tmpName)
	if err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "flush", Path: target, Err: err}
	}

	root, err := writeNode(w, f.root)
	if err != nil {
		w.Abort()
		return &StorageError{Op: "flush", Path: target, Err: err}
	}
	if err := w.Finish(root); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "flush", Path: target, Err: err}
	}

	// Every dataset was loaded by writeNode, so the source is no longer
	// needed and must be closed before it is replaced.
	if f.src != nil {
		f.src.Close()
		f.src = nil
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "flush", Path: target, Err: err}
	}

	f.dirty = false
	f.log.WithField("target", target).Debug("flushed container")
	return nil
}

// writeNode writes n and everything below it, children first, and returns
// the address of n.
func writeNode(w *hdf5.Writer, n *Node) (uint64, error) {
	attrs := make([]hdf5.Attr, 0, len(n.order))
	for _, name := range n.order {
		attrs = append(attrs, hdf5.Attr{Name: name, Value: n.attrs[name]})
	}

	if n.dataset != nil {
		data, err := n.dataset.values()
		if err != nil {
			return 0, err
		}
		addr, err := w.WriteDataset(data, []uint64{uint64(n.dataset.height), uint64(n.dataset.width)}, attrs)
		if err != nil {
			return 0, fmt.Errorf("writing dataset %s: %w", n.Path(), err)
		}
		return addr, nil
	}

	links := make([]hdf5.Link, 0, len(n.children))
	for _, c := range n.children {
		addr, err := writeNode(w, c)
		if err != nil {
			return 0, err
		}
		links = append(links, hdf5.Link{Name: c.name, Address: addr})
	}

	addr, err := w.WriteGroup(links, attrs)
	if err != nil {
		return 0, fmt.Errorf("writing group %s: %w", n.Path(), err)
	}
	return addr, nil
}
