// Package alloc hands out file addresses while an HDF5 file is written.
//
// The writer lays the file out bottom-up: raw data and child headers first,
// their parents afterwards and the superblock last. Every block is appended
// at the current end of file, so addresses never move once handed out.
package alloc

import "fmt"

// Block is one allocated region.
type Block struct {
	Addr uint64
	Size uint64
}

// Allocator is an append-only address allocator. It is not safe for
// concurrent use; a file is written by a single goroutine.
type Allocator struct {
	base   uint64
	eof    uint64
	blocks []Block
}

// New returns an allocator whose first block starts at base, usually the
// first byte after the superblock.
func New(base uint64) *Allocator {
	return &Allocator{base: base, eof: base}
}

// Alloc reserves size bytes and returns their address. A zero size returns
// the current end of file without reserving anything.
func (a *Allocator) Alloc(size uint64) uint64 {
	addr := a.eof
	if size == 0 {
		return addr
	}
	a.eof += size
	a.blocks = append(a.blocks, Block{Addr: addr, Size: size})
	return addr
}

// AllocAligned is Alloc with the address rounded up to a multiple of align.
func (a *Allocator) AllocAligned(size, align uint64) uint64 {
	if align > 1 {
		if rem := a.eof % align; rem != 0 {
			a.eof += align - rem
		}
	}
	return a.Alloc(size)
}

// EOFAddr returns the address one past the last reserved byte.
func (a *Allocator) EOFAddr() uint64 { return a.eof }

// Blocks returns a copy of the reserved blocks in allocation order.
func (a *Allocator) Blocks() []Block {
	return append([]Block(nil), a.blocks...)
}

// Validate reports blocks that overlap or fall outside [base, eof).
// Blocks are appended in address order, so a single pass is enough.
func (a *Allocator) Validate() error {
	prev := a.base
	for _, b := range a.blocks {
		if b.Addr < prev {
			return fmt.Errorf("block at 0x%x overlaps previous block ending at 0x%x", b.Addr, prev)
		}
		prev = b.Addr + b.Size
	}
	if prev > a.eof {
		return fmt.Errorf("block ending at 0x%x extends past EOF 0x%x", prev, a.eof)
	}
	return nil
}
