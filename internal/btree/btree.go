// Package btree walks version 1 B-trees: the group trees that index the
// symbol table nodes of old-style groups and the chunk trees of chunked
// datasets.
package btree

import (
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
	"github.com/robert-malhotra/go-odim/internal/heap"
)

const (
	typeGroup = 0
	typeChunk = 1

	// maxDepth bounds recursion through corrupt trees.
	maxDepth = 64
)

// node is one decoded B-tree node. keys has one more entry than children.
type node struct {
	level    uint8
	keys     [][]byte
	children []uint64
}

func readNode(r *binary.Reader, addr uint64, wantType uint8, keySize int) (*node, error) {
	sz := r.Sizes()
	d, err := r.Decoder(addr, 8+2*sz.Offset)
	if err != nil {
		return nil, err
	}
	d.Signature("TREE")
	typ := d.U8()
	level := d.U8()
	n := int(d.U16())
	if err := d.Err(); err != nil {
		return nil, err
	}
	if typ != wantType {
		return nil, fmt.Errorf("B-tree node type %d, want %d", typ, wantType)
	}

	body, err := r.Decoder(addr+uint64(8+2*sz.Offset), n*(keySize+sz.Offset)+keySize)
	if err != nil {
		return nil, err
	}
	nd := &node{level: level, keys: make([][]byte, 0, n+1), children: make([]uint64, 0, n)}
	for i := 0; i < n; i++ {
		nd.keys = append(nd.keys, body.Bytes(keySize))
		nd.children = append(nd.children, body.Addr())
	}
	nd.keys = append(nd.keys, body.Bytes(keySize))
	return nd, body.Err()
}

// walk calls leaf for every child of every leaf node below addr.
func walk(r *binary.Reader, addr uint64, typ uint8, keySize int, depth int, leaf func(key []byte, child uint64) error) error {
	if depth > maxDepth {
		return fmt.Errorf("B-tree deeper than %d levels", maxDepth)
	}
	nd, err := readNode(r, addr, typ, keySize)
	if err != nil {
		return fmt.Errorf("B-tree node at %#x: %w", addr, err)
	}
	for i, child := range nd.children {
		if nd.level > 0 {
			err = walk(r, child, typ, keySize, depth+1, leaf)
		} else {
			err = leaf(nd.keys[i], child)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Entry is one member of an old-style group.
type Entry struct {
	Name    string
	Address uint64

	// Soft is set for symbolic links; Target is then the link value.
	Soft   bool
	Target string
}

// GroupEntries returns the members of the group whose B-tree is at addr and
// whose names are in h, in name order.
func GroupEntries(r *binary.Reader, addr uint64, h *heap.Local) ([]Entry, error) {
	var entries []Entry
	err := walk(r, addr, typeGroup, r.Sizes().Length, 0, func(_ []byte, snod uint64) error {
		es, err := readSymbolNode(r, snod, h)
		if err != nil {
			return fmt.Errorf("symbol table node at %#x: %w", snod, err)
		}
		entries = append(entries, es...)
		return nil
	})
	return entries, err
}

func readSymbolNode(r *binary.Reader, addr uint64, h *heap.Local) ([]Entry, error) {
	d, err := r.Decoder(addr, 8)
	if err != nil {
		return nil, err
	}
	d.Signature("SNOD")
	if v := d.U8(); v != 1 && d.Err() == nil {
		return nil, fmt.Errorf("version %d", v)
	}
	d.Skip(1)
	n := int(d.U16())
	if err := d.Err(); err != nil {
		return nil, err
	}

	entrySize := 2*r.Sizes().Offset + 24
	d, err = r.Decoder(addr+8, n*entrySize)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		nameOff := d.Addr()
		e := Entry{Address: d.Addr()}
		cache := d.U32()
		d.Skip(4)
		scratch := d.Bytes(16)
		if err := d.Err(); err != nil {
			return nil, err
		}
		if e.Name, err = h.String(nameOff); err != nil {
			return nil, err
		}
		if cache == 2 {
			e.Soft = true
			if e.Target, err = h.String(binary.Uint(scratch[:4])); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Chunk is one stored chunk of a dataset.
type Chunk struct {
	// Offset is the position of the chunk's first element, one entry per
	// dataset dimension.
	Offset  []uint64
	Size    uint32
	Mask    uint32
	Address uint64
}

// Chunks returns every chunk indexed by the chunk B-tree at addr for a
// dataset of the given rank.
func Chunks(r *binary.Reader, addr uint64, rank int) ([]Chunk, error) {
	keySize := 8 + 8*(rank+1)
	var chunks []Chunk
	err := walk(r, addr, typeChunk, keySize, 0, func(key []byte, child uint64) error {
		d := r.Decode(key)
		c := Chunk{Size: d.U32(), Mask: d.U32(), Address: child, Offset: make([]uint64, rank)}
		for i := range c.Offset {
			c.Offset[i] = d.U64()
		}
		chunks = append(chunks, c)
		return d.Err()
	})
	return chunks, err
}
