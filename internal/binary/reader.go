package binary

import (
	"errors"
	"fmt"
	"io"
)

// Reader reads file structures by address. Addresses are relative to the
// base address recorded in the superblock.
type Reader struct {
	r     io.ReaderAt
	size  int64
	base  uint64
	sizes Sizes
}

// NewReader returns a Reader over r, which holds size bytes.
func NewReader(r io.ReaderAt, size int64, base uint64, sizes Sizes) *Reader {
	return &Reader{r: r, size: size, base: base, sizes: sizes}
}

// Sizes returns the address and length widths of the file.
func (r *Reader) Sizes() Sizes { return r.sizes }

// ReadAt reads exactly n bytes at addr.
func (r *Reader) ReadAt(addr uint64, n int) ([]byte, error) {
	if addr == Undefined {
		return nil, errors.New("read at undefined address")
	}
	off := r.base + addr
	if n < 0 || off > uint64(r.size) || uint64(n) > uint64(r.size)-off {
		return nil, fmt.Errorf("%w: %d bytes at %#x past end of file (%d bytes)", ErrTruncated, n, addr, r.size)
	}
	buf := make([]byte, n)
	if _, err := r.r.ReadAt(buf, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf, nil
}

// ReadUpTo reads at most n bytes at addr, stopping at the end of the file.
// It is used for structures whose size is only known after their prefix is
// decoded.
func (r *Reader) ReadUpTo(addr uint64, n int) ([]byte, error) {
	if off := r.base + addr; addr != Undefined && off < uint64(r.size) && uint64(n) > uint64(r.size)-off {
		n = int(uint64(r.size) - off)
	}
	return r.ReadAt(addr, n)
}

// Decoder reads n bytes at addr and returns a Decoder over them.
func (r *Reader) Decoder(addr uint64, n int) (*Decoder, error) {
	buf, err := r.ReadAt(addr, n)
	if err != nil {
		return nil, err
	}
	return NewDecoder(buf, r.sizes), nil
}

// Decode returns a Decoder over buf using the file's field widths.
func (r *Reader) Decode(buf []byte) *Decoder {
	return NewDecoder(buf, r.sizes)
}
