package odim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-odim/container"
)

// Numbered children such as dataset1, dataset2 are addressed by a 0-based
// index: dataset<N> has index N-1. Indices are never renumbered, so removal
// leaves gaps, and new children take the index after the highest one.

const (
	datasetPrefix = "dataset"
	dataPrefix    = "data"
	qualityPrefix = "quality"
)

func indexedName(prefix string, index int) string {
	return prefix + strconv.Itoa(index+1)
}

// parseIndexed returns the index of a name like prefix<N>, N >= 1.
func parseIndexed(prefix, name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" || rest[0] == '0' || rest[0] == '+' || rest[0] == '-' {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// indices returns the occupied indices of the prefix<N> groups below n in
// increasing order.
func indices(n *container.Node, prefix string) []int {
	var out []int
	for _, name := range n.Children() {
		i, ok := parseIndexed(prefix, name)
		if !ok {
			continue
		}
		if c := n.Child(name); c == nil || c.IsDataset() {
			continue
		}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func nextIndex(n *container.Node, prefix string) int {
	idx := indices(n, prefix)
	if len(idx) == 0 {
		return 0
	}
	return idx[len(idx)-1] + 1
}

// indexedChild returns the group prefix<index+1> below n, or nil.
func indexedChild(n *container.Node, prefix string, index int) *container.Node {
	if index < 0 {
		return nil
	}
	c := n.Child(indexedName(prefix, index))
	if c == nil || c.IsDataset() {
		return nil
	}
	return c
}

// members manages the numbered groups of one prefix below a node.
type members struct {
	node   *container.Node
	prefix string
}

func (m members) indices() []int {
	return indices(m.node, m.prefix)
}

func (m members) get(index int) (*container.Node, error) {
	c := indexedChild(m.node, m.prefix, index)
	if c == nil {
		return nil, formatErr(ErrMissingDataset, m.node.Path(), indexedName(m.prefix, index), nil)
	}
	return c, nil
}

// at returns the member at position pos of indices().
func (m members) at(pos int) (int, *container.Node, error) {
	idx := m.indices()
	if pos < 0 || pos >= len(idx) {
		return 0, nil, fmt.Errorf("%w: position %d of %d %s groups", ErrInvalidArgument, pos, len(idx), m.prefix)
	}
	c, err := m.get(idx[pos])
	return idx[pos], c, err
}

func (m members) create() (int, *container.Node, error) {
	index := nextIndex(m.node, m.prefix)
	c, err := m.node.EnsureChild(indexedName(m.prefix, index))
	if err != nil {
		return 0, nil, fmt.Errorf("creating %s: %w", joinName(m.node.Path(), indexedName(m.prefix, index)), err)
	}
	return index, c, nil
}

func (m members) remove(index int) error {
	if _, err := m.get(index); err != nil {
		return err
	}
	return m.node.RemoveChild(indexedName(m.prefix, index))
}
