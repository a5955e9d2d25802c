// Package heap reads the local heaps that hold old-style group link names
// and the global heap collections that hold variable-length data.
package heap

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

// Local is a local heap.
type Local struct {
	data []byte
}

// ReadLocal reads the local heap at addr.
func ReadLocal(r *binary.Reader, addr uint64) (*Local, error) {
	sz := r.Sizes()
	d, err := r.Decoder(addr, 8+2*sz.Length+sz.Offset)
	if err != nil {
		return nil, fmt.Errorf("local heap at %#x: %w", addr, err)
	}
	d.Signature("HEAP")
	version := d.U8()
	d.Skip(3)
	size := d.Length()
	d.Length() // free list head
	dataAddr := d.Addr()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("local heap at %#x: %w", addr, err)
	}
	if version != 0 {
		return nil, fmt.Errorf("local heap version %d", version)
	}

	data, err := r.ReadAt(dataAddr, int(size))
	if err != nil {
		return nil, fmt.Errorf("local heap data: %w", err)
	}
	return &Local{data: data}, nil
}

// NewLocal returns a heap over data, for tests and callers that already hold
// the heap contents.
func NewLocal(data []byte) *Local { return &Local{data: data} }

// String returns the null-terminated string at offset.
func (h *Local) String(offset uint64) (string, error) {
	if offset >= uint64(len(h.data)) {
		return "", fmt.Errorf("local heap offset %d past end (%d bytes)", offset, len(h.data))
	}
	for i := offset; i < uint64(len(h.data)); i++ {
		if h.data[i] == 0 {
			return string(h.data[offset:i]), nil
		}
	}
	return "", errors.New("unterminated string in local heap")
}

// Global reads objects from global heap collections, caching each
// collection once read.
type Global struct {
	r           *binary.Reader
	collections map[uint64]map[uint16][]byte
}

// NewGlobal returns an empty collection cache over r.
func NewGlobal(r *binary.Reader) *Global {
	return &Global{r: r, collections: make(map[uint64]map[uint16][]byte)}
}

// Object returns the data of object index in the collection at addr.
func (g *Global) Object(addr uint64, index uint32) ([]byte, error) {
	objs, ok := g.collections[addr]
	if !ok {
		var err error
		if objs, err = g.readCollection(addr); err != nil {
			return nil, fmt.Errorf("global heap at %#x: %w", addr, err)
		}
		g.collections[addr] = objs
	}
	obj, ok := objs[uint16(index)]
	if !ok || index > 0xffff {
		return nil, fmt.Errorf("global heap at %#x has no object %d", addr, index)
	}
	return obj, nil
}

func (g *Global) readCollection(addr uint64) (map[uint16][]byte, error) {
	sz := g.r.Sizes()
	d, err := g.r.Decoder(addr, 8+sz.Length)
	if err != nil {
		return nil, err
	}
	d.Signature("GCOL")
	if v := d.U8(); v != 1 && d.Err() == nil {
		return nil, fmt.Errorf("version %d", v)
	}
	d.Skip(3)
	size := d.Length()
	if err := d.Err(); err != nil {
		return nil, err
	}

	buf, err := g.r.ReadUpTo(addr, int(size))
	if err != nil {
		return nil, err
	}
	d = g.r.Decode(buf)
	d.Skip(8 + sz.Length)

	objs := make(map[uint16][]byte)
	for d.Len() >= 8+sz.Length {
		index := d.U16()
		d.Skip(6) // reference count, reserved
		n := d.Length()
		if index == 0 {
			// Free space runs to the end of the collection.
			break
		}
		data := d.Bytes(int(n))
		d.Align(8)
		if err := d.Err(); err != nil {
			return nil, err
		}
		objs[index] = data
	}
	return objs, nil
}
