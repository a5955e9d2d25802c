package hdf5

import (
	"fmt"
	"path"

	"github.com/robert-malhotra/go-odim/internal/btree"
	"github.com/robert-malhotra/go-odim/internal/heap"
	"github.com/robert-malhotra/go-odim/internal/message"
	"github.com/robert-malhotra/go-odim/internal/object"
)

// Group represents an HDF5 group.
type Group struct {
	file   *File
	path   string
	header *object.Header
}

// linkResolution holds the result of resolving a link.
type linkResolution struct {
	address   uint64
	isDataset bool
}

// member is one named child of a group, before it is resolved.
type member struct {
	name    string
	kind    message.LinkKind
	address uint64
	target  string
}

// Name returns the group name (last component of path).
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the full path to this group.
func (g *Group) Path() string {
	return g.path
}

// OpenGroup opens a subgroup by relative path.
func (g *Group) OpenGroup(relativePath string) (*Group, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}
	group, ok := obj.(*Group)
	if !ok {
		return nil, ErrNotGroup
	}
	return group, nil
}

// OpenDataset opens a dataset by relative path.
func (g *Group) OpenDataset(relativePath string) (*Dataset, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}
	dataset, ok := obj.(*Dataset)
	if !ok {
		return nil, ErrNotDataset
	}
	return dataset, nil
}

// open opens an object by relative path.
func (g *Group) open(relativePath string) (interface{}, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	parts := splitPath(relativePath)
	if len(parts) == 0 {
		return g, nil
	}

	current := g
	visited := make(map[string]bool)

	for i, name := range parts {
		res, err := current.findChild(name, visited)
		if err != nil {
			return nil, fmt.Errorf("finding %q: %w", name, err)
		}

		fullPath := path.Join(current.path, name)

		if i == len(parts)-1 {
			if res.isDataset {
				return g.file.openDatasetAt(res.address, fullPath)
			}
			return g.file.openGroupAt(res.address, fullPath)
		}

		if res.isDataset {
			return nil, fmt.Errorf("%q is not a group", fullPath)
		}

		next, err := g.file.openGroupAt(res.address, fullPath)
		if err != nil {
			return nil, err
		}
		current = next
	}

	return current, nil
}

// members lists the children of the group. New-style groups keep them in
// link messages; old-style groups in a symbol table B-tree, which the root
// group of an old file may only reference from the superblock.
func (g *Group) members() ([]member, error) {
	if li, ok := g.header.Find(message.TypeLinkInfo).(*message.LinkInfo); ok && li.Dense() {
		return nil, fmt.Errorf("group %s: links in dense storage: %w", g.path, ErrUnsupported)
	}

	var out []member
	for _, msg := range g.header.All(message.TypeLink) {
		l := msg.(*message.Link)
		out = append(out, member{name: l.Name, kind: l.Kind, address: l.Address, target: l.Target})
	}
	if len(out) > 0 {
		return out, nil
	}

	st, _ := g.header.Find(message.TypeSymbolTable).(*message.SymbolTable)
	if st == nil && g.path == "/" && g.file.superblock.RootBTree != 0 {
		st = &message.SymbolTable{BTree: g.file.superblock.RootBTree, Heap: g.file.superblock.RootHeap}
	}
	if st == nil {
		return nil, nil
	}

	names, err := heap.ReadLocal(g.file.reader, st.Heap)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", g.path, err)
	}
	entries, err := btree.GroupEntries(g.file.reader, st.BTree, names)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", g.path, err)
	}
	for _, e := range entries {
		m := member{name: e.Name, kind: message.LinkHard, address: e.Address}
		if e.Soft {
			m.kind, m.target = message.LinkSoft, e.Target
		}
		out = append(out, m)
	}
	return out, nil
}

// findChild finds a child object by name, following soft links.
func (g *Group) findChild(name string, visited map[string]bool) (*linkResolution, error) {
	members, err := g.members()
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.name == name {
			return g.resolve(m, visited)
		}
	}
	return nil, ErrNotFound
}

func (g *Group) resolve(m member, visited map[string]bool) (*linkResolution, error) {
	switch m.kind {
	case message.LinkHard:
		isDataset, err := g.isDataset(m.address)
		if err != nil {
			return nil, err
		}
		return &linkResolution{address: m.address, isDataset: isDataset}, nil

	case message.LinkSoft:
		if len(visited) >= MaxLinkDepth {
			return nil, ErrLinkDepth
		}
		if visited[m.target] {
			return nil, fmt.Errorf("circular soft link detected: %s", m.target)
		}
		visited[m.target] = true
		return g.file.findByAbsolutePath(m.target, visited)

	case message.LinkExternal:
		return nil, fmt.Errorf("external link %q -> %s: %w", m.name, m.target, ErrUnsupported)
	}
	return nil, fmt.Errorf("link %q of type %d: %w", m.name, m.kind, ErrUnsupported)
}

// isDataset checks if an object at the given address is a dataset.
func (g *Group) isDataset(address uint64) (bool, error) {
	header, err := object.Read(g.file.reader, address)
	if err != nil {
		return false, err
	}
	// A dataset has a dataspace message
	return header.Find(message.TypeDataspace) != nil, nil
}

// Members returns the names of all members (groups and datasets) in this
// group, in storage order.
func (g *Group) Members() ([]string, error) {
	members, err := g.members()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.name
	}
	return names, nil
}

// Attrs returns the attribute names for this group.
func (g *Group) Attrs() []string {
	return attrNames(g.header)
}

// Attr returns an attribute by name, or nil if not found.
func (g *Group) Attr(name string) *Attribute {
	return findAttr(g.header, g.file, name)
}

// HasAttr returns true if the group has an attribute with the given name.
func (g *Group) HasAttr(name string) bool {
	return g.Attr(name) != nil
}

func attrNames(header *object.Header) []string {
	var names []string
	for _, msg := range header.All(message.TypeAttribute) {
		names = append(names, msg.(*message.Attribute).Name)
	}
	return names
}

func findAttr(header *object.Header, f *File, name string) *Attribute {
	for _, msg := range header.All(message.TypeAttribute) {
		attr := msg.(*message.Attribute)
		if attr.Name == name {
			return &Attribute{msg: attr, file: f}
		}
	}
	return nil
}
