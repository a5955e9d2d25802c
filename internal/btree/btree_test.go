package btree

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/robert-malhotra/go-odim/internal/binary"
	"github.com/robert-malhotra/go-odim/internal/heap"
)

var sizes = binary.Sizes{Offset: 8, Length: 8}

func image(blocks map[uint64][]byte) *binary.Reader {
	var size uint64
	for addr, b := range blocks {
		if end := addr + uint64(len(b)); end > size {
			size = end
		}
	}
	buf := make([]byte, size)
	for addr, b := range blocks {
		copy(buf[addr:], b)
	}
	return binary.NewReader(bytes.NewReader(buf), int64(len(buf)), 0, sizes)
}

func treeNode(typ, level uint8, keys [][]byte, children []uint64) []byte {
	e := binary.NewEncoder(sizes)
	e.String("TREE")
	e.U8(typ)
	e.U8(level)
	e.U16(uint16(len(children)))
	e.Addr(binary.Undefined)
	e.Addr(binary.Undefined)
	for i, c := range children {
		e.Bytes(keys[i])
		e.Addr(c)
	}
	e.Bytes(keys[len(children)])
	return e.Data()
}

func u64(v uint64) []byte {
	e := binary.NewEncoder(sizes)
	e.U64(v)
	return e.Data()
}

type symbol struct {
	name, target uint64
	addr         uint64
	cache        uint32
}

func symbolNode(syms ...symbol) []byte {
	e := binary.NewEncoder(sizes)
	e.String("SNOD")
	e.U8(1)
	e.U8(0)
	e.U16(uint16(len(syms)))
	for _, s := range syms {
		e.Addr(s.name)
		e.Addr(s.addr)
		e.U32(s.cache)
		e.U32(0)
		e.U32(uint32(s.target))
		e.Zero(12)
	}
	return e.Data()
}

func TestGroupEntries(t *testing.T) {
	names := heap.NewLocal([]byte("\x00dataset1\x00dataset2\x00link\x00/dataset1\x00"))
	r := image(map[uint64][]byte{
		100: treeNode(typeGroup, 0, [][]byte{u64(0), u64(10), u64(19)}, []uint64{400, 600}),
		400: symbolNode(symbol{name: 1, addr: 1000}, symbol{name: 10, addr: 2000}),
		600: symbolNode(symbol{name: 19, cache: 2, target: 24}),
	})

	got, err := GroupEntries(r, 100, names)
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{
		{Name: "dataset1", Address: 1000},
		{Name: "dataset2", Address: 2000},
		{Name: "link", Address: 0, Soft: true, Target: "/dataset1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupEntries = %+v\nwant %+v", got, want)
	}
}

func chunkKey(size, mask uint32, offs ...uint64) []byte {
	e := binary.NewEncoder(sizes)
	e.U32(size)
	e.U32(mask)
	for _, o := range offs {
		e.U64(o)
	}
	e.U64(0)
	return e.Data()
}

func TestChunks(t *testing.T) {
	end := chunkKey(0, 0, 8, 0)
	r := image(map[uint64][]byte{
		// Root at level 1 with two leaves.
		0: treeNode(typeChunk, 1, [][]byte{chunkKey(0, 0, 0, 0), chunkKey(0, 0, 4, 0), end}, []uint64{300, 600}),
		300: treeNode(typeChunk, 0, [][]byte{chunkKey(40, 0, 0, 0), chunkKey(38, 1, 0, 5), end}, []uint64{5000, 5040}),
		600: treeNode(typeChunk, 0, [][]byte{chunkKey(40, 0, 4, 0), end}, []uint64{5100}),
	})

	got, err := Chunks(r, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []Chunk{
		{Offset: []uint64{0, 0}, Size: 40, Address: 5000},
		{Offset: []uint64{0, 5}, Size: 38, Mask: 1, Address: 5040},
		{Offset: []uint64{4, 0}, Size: 40, Address: 5100},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunks = %+v\nwant %+v", got, want)
	}
}

func TestWrongNodeType(t *testing.T) {
	r := image(map[uint64][]byte{0: treeNode(typeChunk, 0, [][]byte{chunkKey(0, 0, 0), chunkKey(0, 0, 0)}, nil)})
	if _, err := GroupEntries(r, 0, heap.NewLocal([]byte{0})); err == nil {
		t.Error("chunk tree read as a group tree")
	}
}

func TestCycle(t *testing.T) {
	// An internal node whose only child is itself.
	r := image(map[uint64][]byte{0: treeNode(typeChunk, 1, [][]byte{chunkKey(0, 0, 0), chunkKey(0, 0, 0)}, []uint64{0})})
	if _, err := Chunks(r, 0, 1); err == nil {
		t.Error("self-referencing tree walked without error")
	}
}
