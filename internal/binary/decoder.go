// Package binary reads and writes the little-endian, variable-width fields of
// the HDF5 file format.
//
// Addresses and lengths are stored with the widths declared by the
// superblock. A Decoder walks a byte slice and remembers the first error, so
// a run of field reads needs a single check at the end.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Undefined is the address HDF5 uses for "not allocated".
const Undefined = ^uint64(0)

// ErrTruncated is reported when a structure runs past the end of its bytes.
var ErrTruncated = errors.New("structure truncated")

// Sizes holds the address and length widths of a file, in bytes.
type Sizes struct {
	Offset int
	Length int
}

// Decoder reads fields from a byte slice.
type Decoder struct {
	buf   []byte
	pos   int
	sizes Sizes
	err   error
}

// NewDecoder returns a Decoder over buf.
func NewDecoder(buf []byte, sizes Sizes) *Decoder {
	return &Decoder{buf: buf, sizes: sizes}
}

// Sizes returns the address and length widths used by d.
func (d *Decoder) Sizes() Sizes { return d.sizes }

// Err returns the first error met while decoding.
func (d *Decoder) Err() error { return d.err }

// Pos returns the number of bytes consumed.
func (d *Decoder) Pos() int { return d.pos }

// Len returns the number of bytes left.
func (d *Decoder) Len() int { return len(d.buf) - d.pos }

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.pos+n > len(d.buf) {
		d.err = fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncated, n, d.pos, len(d.buf)-d.pos)
		return nil
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b
}

// Bytes returns the next n bytes. The result aliases the decoder's buffer.
func (d *Decoder) Bytes(n int) []byte { return d.take(n) }

// Skip discards n bytes.
func (d *Decoder) Skip(n int) { d.take(n) }

// Align skips forward to the next multiple of n measured from the start of
// the buffer.
func (d *Decoder) Align(n int) {
	if r := d.pos % n; r != 0 {
		d.take(n - r)
	}
}

// Signature consumes len(sig) bytes and fails unless they equal sig.
func (d *Decoder) Signature(sig string) {
	b := d.take(len(sig))
	if d.err == nil && string(b) != sig {
		d.err = fmt.Errorf("bad signature %q, want %q", b, sig)
	}
}

func (d *Decoder) U8() uint8 {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *Decoder) U16() uint16 {
	if b := d.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (d *Decoder) U32() uint32 {
	if b := d.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *Decoder) U64() uint64 {
	if b := d.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// Uint reads an unsigned little-endian integer of n bytes, n <= 8.
func (d *Decoder) Uint(n int) uint64 {
	if n > 8 {
		d.fail(fmt.Errorf("integer width %d", n))
		return 0
	}
	return Uint(d.take(n))
}

// Addr reads an address. An all-ones value decodes as Undefined.
func (d *Decoder) Addr() uint64 {
	v := d.Uint(d.sizes.Offset)
	if d.sizes.Offset < 8 && v == 1<<(8*uint(d.sizes.Offset))-1 {
		return Undefined
	}
	return v
}

// Length reads a length field.
func (d *Decoder) Length() uint64 { return d.Uint(d.sizes.Length) }

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Uint decodes a little-endian unsigned integer of up to eight bytes.
func Uint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
