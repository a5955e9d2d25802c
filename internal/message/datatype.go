package message

import (
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

// Class is a datatype class.
type Class uint8

const (
	ClassFixedPoint Class = 0
	ClassFloatPoint Class = 1
	ClassTime       Class = 2
	ClassString     Class = 3
	ClassBitfield   Class = 4
	ClassOpaque     Class = 5
	ClassCompound   Class = 6
	ClassReference  Class = 7
	ClassEnum       Class = 8
	ClassVarLen     Class = 9
	ClassArray      Class = 10
)

var classNames = [...]string{"integer", "float", "time", "string", "bitfield", "opaque", "compound", "reference", "enum", "variable-length", "array"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// String padding.
const (
	PadNullTerm  uint8 = 0
	PadNull      uint8 = 1
	PadSpace     uint8 = 2
	CharsetASCII uint8 = 0
	CharsetUTF8  uint8 = 1
)

// Datatype describes the element type of a dataset or attribute. Only the
// properties of the classes this module can convert are decoded; the others
// keep their class and size.
type Datatype struct {
	Class   Class
	Version uint8
	Size    uint32

	BigEndian bool
	Signed    bool

	// Strings, fixed and variable length.
	Padding uint8
	Charset uint8

	// VarLenString is set for variable-length strings, the only
	// variable-length kind supported.
	VarLenString bool

	// Base is the parent type of an enum or variable-length type.
	Base *Datatype

	EnumNames  []string
	EnumValues [][]byte
}

func (m *Datatype) Type() Type { return TypeDatatype }

// NewFixedPoint returns a little-endian integer type of size bytes.
func NewFixedPoint(size uint32, signed bool) *Datatype {
	return &Datatype{Class: ClassFixedPoint, Version: 1, Size: size, Signed: signed}
}

// NewFloatPoint returns a little-endian IEEE float of 4 or 8 bytes.
func NewFloatPoint(size uint32) *Datatype {
	return &Datatype{Class: ClassFloatPoint, Version: 1, Size: size}
}

// NewString returns a fixed-length ASCII string type of size bytes.
func NewString(size uint32, padding uint8) *Datatype {
	return &Datatype{Class: ClassString, Version: 1, Size: size, Padding: padding}
}

func decodeDatatype(d *binary.Decoder) (*Datatype, error) {
	head := d.U8()
	b0, b1 := d.U8(), d.U8()
	d.Skip(1)
	m := &Datatype{
		Class:   Class(head & 0x0f),
		Version: head >> 4,
		Size:    d.U32(),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	switch m.Class {
	case ClassFixedPoint:
		m.BigEndian = b0&0x01 != 0
		m.Signed = b0&0x08 != 0
		d.Skip(4) // bit offset, precision
	case ClassFloatPoint:
		if b0&0x40 != 0 {
			return nil, fmt.Errorf("VAX float order: %w", ErrUnsupported)
		}
		m.BigEndian = b0&0x01 != 0
		d.Skip(12)
	case ClassString:
		m.Padding = b0 & 0x0f
		m.Charset = b0 >> 4
	case ClassEnum:
		base, err := decodeDatatype(d)
		if err != nil {
			return nil, fmt.Errorf("enum base: %w", err)
		}
		m.Base = base
		n := int(b0) | int(b1)<<8
		m.EnumNames = make([]string, n)
		for i := range m.EnumNames {
			m.EnumNames[i] = cString(d, m.Version < 3)
		}
		m.EnumValues = make([][]byte, n)
		for i := range m.EnumValues {
			m.EnumValues[i] = d.Bytes(int(base.Size))
		}
	case ClassVarLen:
		m.VarLenString = b0&0x0f == 1
		m.Padding = b0 >> 4
		m.Charset = b1 & 0x0f
		base, err := decodeDatatype(d)
		if err != nil {
			return nil, fmt.Errorf("variable-length base: %w", err)
		}
		m.Base = base
	}
	return m, nil
}

// cString reads a null-terminated string, optionally padded to a multiple of
// eight bytes counted from its start.
func cString(d *binary.Decoder, pad8 bool) string {
	start := d.Pos()
	var buf []byte
	for d.Err() == nil {
		c := d.U8()
		if c == 0 {
			break
		}
		buf = append(buf, c)
	}
	if pad8 {
		if r := (d.Pos() - start) % 8; r != 0 {
			d.Skip(8 - r)
		}
	}
	return string(buf)
}

// Encode writes the datatype. Only integer, float and fixed-length string
// types are written.
func (m *Datatype) Encode(e *binary.Encoder) {
	e.U8(1<<4 | uint8(m.Class))
	var bits [3]byte
	switch m.Class {
	case ClassFixedPoint:
		if m.Signed {
			bits[0] |= 0x08
		}
	case ClassFloatPoint:
		bits[0] = 0x20 // implied leading mantissa bit
		bits[1] = uint8(m.Size*8 - 1)
	case ClassString:
		bits[0] = m.Padding | m.Charset<<4
	}
	e.Bytes(bits[:])
	e.U32(m.Size)

	switch m.Class {
	case ClassFixedPoint:
		e.U16(0)
		e.U16(uint16(m.Size * 8))
	case ClassFloatPoint:
		e.U16(0)
		e.U16(uint16(m.Size * 8))
		if m.Size == 4 {
			e.Bytes([]byte{23, 8, 0, 23})
			e.U32(127)
		} else {
			e.Bytes([]byte{52, 11, 0, 52})
			e.U32(1023)
		}
	}
}
