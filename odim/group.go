package odim

import (
	"fmt"

	"github.com/robert-malhotra/go-odim/container"
)

// Group is one what, where or how metadata group. It is resolved by name
// from its parent node on every call: reading an absent group behaves like
// reading an empty one, and the first write creates it.
type Group struct {
	parent *container.Node
	name   string
}

func newGroup(parent *container.Node, name string) *Group {
	return &Group{parent: parent, name: name}
}

// Name returns the group name, such as "what".
func (g *Group) Name() string {
	return g.name
}

// Path returns the absolute path of the group.
func (g *Group) Path() string {
	return joinName(g.parent.Path(), g.name)
}

// Exists reports whether the group is present in the file.
func (g *Group) Exists() bool {
	return g.node() != nil
}

func (g *Group) node() *container.Node {
	n := g.parent.Child(g.name)
	if n == nil || n.IsDataset() {
		return nil
	}
	return n
}

// Has reports whether the attribute name exists.
func (g *Group) Has(name string) bool {
	n := g.node()
	return n != nil && n.HasAttr(name)
}

// Names returns the attribute names in stored order.
func (g *Group) Names() []string {
	if n := g.node(); n != nil {
		return n.AttrNames()
	}
	return nil
}

// Raw returns the attribute as stored, without decoding.
func (g *Group) Raw(name string) (interface{}, bool) {
	n := g.node()
	if n == nil {
		return nil, false
	}
	return n.Attr(name)
}

// Remove deletes the attribute name. Removing an absent attribute is not an error.
func (g *Group) Remove(name string) error {
	n := g.node()
	if n == nil || !n.HasAttr(name) {
		return nil
	}
	if err := n.RemoveAttr(name); err != nil {
		return fmt.Errorf("removing %s: %w", joinName(g.Path(), name), err)
	}
	return nil
}

// Import copies every attribute of src into g, replacing attributes of the
// same name. On failure the attributes copied so far are kept.
func (g *Group) Import(src *Group) error {
	for _, name := range src.Names() {
		v, _ := src.Raw(name)
		if err := g.setRaw(name, v); err != nil {
			return err
		}
	}
	return nil
}

func (g *Group) setRaw(name string, v interface{}) error {
	n, err := g.parent.EnsureChild(g.name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", g.Path(), err)
	}
	if err := n.SetAttr(name, v); err != nil {
		return fmt.Errorf("writing %s: %w", joinName(g.Path(), name), err)
	}
	return nil
}

// Get decodes the attribute name as T. A missing attribute fails with
// ErrMissingAttribute and an undecodable one with ErrInvalidAttributeValue.
func Get[T any](g *Group, name string) (T, error) {
	var zero T
	c, err := codecFor[T]()
	if err != nil {
		return zero, err
	}

	raw, ok := g.Raw(name)
	if !ok {
		return zero, missingAttr(g.Path(), name)
	}
	v, err := c.decode(raw)
	if err != nil {
		return zero, formatErr(ErrInvalidAttributeValue, g.Path(), name, err)
	}
	return v.(T), nil
}

// GetOr is like Get but returns def when the attribute is missing.
func GetOr[T any](g *Group, name string, def T) (T, error) {
	if !g.Has(name) {
		return def, nil
	}
	return Get[T](g, name)
}

// Set encodes v and stores it as the attribute name, creating the group if
// needed.
func Set[T any](g *Group, name string, v T) error {
	c, err := codecFor[T]()
	if err != nil {
		return err
	}
	raw, err := c.encode(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", joinName(g.Path(), name), err)
	}
	return g.setRaw(name, raw)
}

func getSeq[T any](g *Group, name string, allowEmpty bool) ([]T, error) {
	v, err := Get[[]T](g, name)
	if err != nil {
		return nil, err
	}
	if len(v) == 0 && !allowEmpty {
		return nil, fmt.Errorf("%s is empty: %w", joinName(g.Path(), name), ErrInvalidArgument)
	}
	return v, nil
}

// Typed accessors for single values.
func (g *Group) GetBool(name string) (bool, error) { return Get[bool](g, name) }
func (g *Group) GetInt(name string) (int, error) { return Get[int](g, name) }
func (g *Group) GetLong(name string) (int64, error) { return Get[int64](g, name) }
func (g *Group) GetFloat(name string) (float32, error) { return Get[float32](g, name) }
func (g *Group) GetDouble(name string) (float64, error) { return Get[float64](g, name) }
func (g *Group) GetString(name string) (string, error) { return Get[string](g, name) }

// Setters create or replace the attribute; SetInt fails for values outside
// the 32-bit range.
func (g *Group) SetBool(name string, v bool) error { return Set(g, name, v) }
func (g *Group) SetInt(name string, v int) error { return Set(g, name, v) }
func (g *Group) SetLong(name string, v int64) error { return Set(g, name, v) }
func (g *Group) SetFloat(name string, v float32) error { return Set(g, name, v) }
func (g *Group) SetDouble(name string, v float64) error { return Set(g, name, v) }
func (g *Group) SetString(name string, v string) error { return Set(g, name, v) }

// GetBools and the other sequence getters fail with ErrInvalidArgument on
// an empty sequence unless allowEmpty is set.
func (g *Group) GetBools(name string, allowEmpty bool) ([]bool, error) {
	return getSeq[bool](g, name, allowEmpty)
}

func (g *Group) GetInts(name string, allowEmpty bool) ([]int, error) {
	return getSeq[int](g, name, allowEmpty)
}

func (g *Group) GetLongs(name string, allowEmpty bool) ([]int64, error) {
	return getSeq[int64](g, name, allowEmpty)
}

func (g *Group) GetDoubles(name string, allowEmpty bool) ([]float64, error) {
	return getSeq[float64](g, name, allowEmpty)
}

func (g *Group) GetStrings(name string, allowEmpty bool) ([]string, error) {
	return getSeq[string](g, name, allowEmpty)
}

func (g *Group) GetFloatPairs(name string, allowEmpty bool) ([]FloatPair, error) {
	return getSeq[FloatPair](g, name, allowEmpty)
}

func (g *Group) SetBools(name string, v []bool) error { return Set(g, name, v) }
func (g *Group) SetInts(name string, v []int) error { return Set(g, name, v) }
func (g *Group) SetLongs(name string, v []int64) error { return Set(g, name, v) }
func (g *Group) SetDoubles(name string, v []float64) error { return Set(g, name, v) }
func (g *Group) SetStrings(name string, v []string) error { return Set(g, name, v) }
func (g *Group) SetFloatPairs(name string, v []FloatPair) error { return Set(g, name, v) }

// Source decodes what/source.
func (g *Group) Source() (SourceInfo, error) {
	return Get[SourceInfo](g, "source")
}

// SetSource stores what/source.
func (g *Group) SetSource(s SourceInfo) error {
	return Set(g, "source", s)
}
