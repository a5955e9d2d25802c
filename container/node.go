package container

import (
	"fmt"
	"path"
	"reflect"
	"strings"
)

// Node is a group or a dataset in a File. Both carry attributes; only groups
// have children.
type Node struct {
	file     *File
	parent   *Node
	name     string
	attrs    map[string]interface{}
	order    []string
	children []*Node
	dataset  *Dataset
}

func newNode(f *File, parent *Node, name string) *Node {
	return &Node{
		file:   f,
		parent: parent,
		name:   name,
		attrs:  make(map[string]interface{}),
	}
}

// Name returns the node name, or "" for the root.
func (n *Node) Name() string {
	return n.name
}

// Path returns the absolute path of the node.
func (n *Node) Path() string {
	if n.parent == nil {
		return "/"
	}
	return path.Join(n.parent.Path(), n.name)
}

// Parent returns the parent group, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// IsDataset reports whether the node is a dataset.
func (n *Node) IsDataset() bool {
	return n.dataset != nil
}

// Child returns the child named name, or nil if there is none.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// HasChild reports whether a child named name exists.
func (n *Node) HasChild(name string) bool {
	return n.Child(name) != nil
}

// Children returns the names of all children in creation order.
func (n *Node) Children() []string {
	names := make([]string, len(n.children))
	for i, c := range n.children {
		names[i] = c.name
	}
	return names
}

// EnsureChild returns the child group named name, creating it if needed.
func (n *Node) EnsureChild(name string) (*Node, error) {
	if c := n.Child(name); c != nil {
		if c.IsDataset() {
			return nil, fmt.Errorf("%s: dataset %w", c.Path(), ErrExists)
		}
		return c, nil
	}
	if err := n.addable(name); err != nil {
		return nil, err
	}

	c := newNode(n.file, n, name)
	n.children = append(n.children, c)
	n.file.touch()
	return c, nil
}

// RemoveChild removes the child named name together with everything below it.
func (n *Node) RemoveChild(name string) error {
	if err := n.file.mutable(); err != nil {
		return err
	}
	for i, c := range n.children {
		if c.name == name {
			n.children = append(n.children[:i], n.children[i+1:]...)
			n.file.touch()
			n.file.log.WithField("node", c.Path()).Debug("removed node")
			return nil
		}
	}
	return fmt.Errorf("%s: %w", path.Join(n.Path(), name), ErrNotFound)
}

func (n *Node) addable(name string) error {
	if err := n.file.mutable(); err != nil {
		return err
	}
	if n.IsDataset() {
		return fmt.Errorf("%s: cannot add children to a dataset", n.Path())
	}
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return fmt.Errorf("invalid node name %q", name)
	}
	return nil
}

// Attr returns the attribute named name and whether it exists.
func (n *Node) Attr(name string) (interface{}, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// HasAttr reports whether the attribute named name exists.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

// AttrNames returns the attribute names in creation order.
func (n *Node) AttrNames() []string {
	return append([]string(nil), n.order...)
}

// SetAttr creates or replaces an attribute. The value can be any of int8
// through uint64, float32, float64, string or a non-empty slice of them; int
// and []int are stored as int64. Replacing an attribute may change its type.
func (n *Node) SetAttr(name string, value interface{}) error {
	if err := n.file.mutable(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("attribute name cannot be empty")
	}

	v, err := normalizeAttr(value)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", name, err)
	}

	if _, ok := n.attrs[name]; !ok {
		n.order = append(n.order, name)
	}
	n.attrs[name] = v
	n.file.touch()
	return nil
}

// RemoveAttr removes the attribute named name.
func (n *Node) RemoveAttr(name string) error {
	if err := n.file.mutable(); err != nil {
		return err
	}
	if _, ok := n.attrs[name]; !ok {
		return fmt.Errorf("attribute %s: %w", name, ErrNotFound)
	}
	delete(n.attrs, name)
	for i, o := range n.order {
		if o == name {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	n.file.touch()
	return nil
}

// normalizeAttr validates an attribute value and returns a private copy.
func normalizeAttr(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case []int:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty sequence", ErrUnsupportedType)
		}
		out := make([]int64, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out, nil
	case string:
		return v, nil
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty sequence", ErrUnsupportedType)
		}
		return append([]string(nil), v...), nil
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedType)
	}
	t := rv.Type()
	if t.Kind() == reflect.Slice {
		if elemTypeOfKind(t.Elem().Kind()) == Invalid || t.Elem() != elemTypeOfKind(t.Elem().Kind()).GoType() {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, value)
		}
		if rv.Len() == 0 {
			return nil, fmt.Errorf("%w: empty sequence", ErrUnsupportedType)
		}
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface(), nil
	}
	if et := elemTypeOfKind(t.Kind()); et == Invalid || t != et.GoType() {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}
	return value, nil
}
