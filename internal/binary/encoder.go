package binary

import "encoding/binary"

// Encoder appends fields to a growing byte slice.
type Encoder struct {
	buf   []byte
	sizes Sizes
}

// NewEncoder returns an empty Encoder.
func NewEncoder(sizes Sizes) *Encoder {
	return &Encoder{sizes: sizes}
}

// Sizes returns the address and length widths used by e.
func (e *Encoder) Sizes() Sizes { return e.sizes }

// Data returns the bytes written so far.
func (e *Encoder) Data() []byte { return e.buf }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) Bytes(b []byte) { e.buf = append(e.buf, b...) }

// String writes s without a terminator.
func (e *Encoder) String(s string) { e.buf = append(e.buf, s...) }

// Zero writes n zero bytes.
func (e *Encoder) Zero(n int) {
	for i := 0; i < n; i++ {
		e.buf = append(e.buf, 0)
	}
}

// Align pads with zeros to the next multiple of n.
func (e *Encoder) Align(n int) {
	if r := len(e.buf) % n; r != 0 {
		e.Zero(n - r)
	}
}

func (e *Encoder) U8(v uint8)   { e.buf = append(e.buf, v) }
func (e *Encoder) U16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *Encoder) U32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *Encoder) U64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

// Uint writes the low n bytes of v.
func (e *Encoder) Uint(v uint64, n int) {
	for i := 0; i < n; i++ {
		e.buf = append(e.buf, byte(v>>(8*uint(i))))
	}
}

func (e *Encoder) Addr(v uint64)   { e.Uint(v, e.sizes.Offset) }
func (e *Encoder) Length(v uint64) { e.Uint(v, e.sizes.Length) }

// Checksum appends the lookup3 checksum of everything written since start.
func (e *Encoder) Checksum(start int) {
	e.U32(Lookup3(e.buf[start:]))
}
