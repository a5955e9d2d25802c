package message

import (
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

// Attribute is an attribute stored in an object header.
type Attribute struct {
	Name      string
	Datatype  *Datatype
	Dataspace *Dataspace
	Data      []byte
}

func (m *Attribute) Type() Type { return TypeAttribute }

// NewAttribute returns an attribute message holding the encoded data.
func NewAttribute(name string, dt *Datatype, ds *Dataspace, data []byte) *Attribute {
	return &Attribute{Name: name, Datatype: dt, Dataspace: ds, Data: data}
}

func decodeAttribute(d *binary.Decoder) (*Attribute, error) {
	version := d.U8()
	flags := d.U8()
	nameSize := int(d.U16())
	typeSize := int(d.U16())
	spaceSize := int(d.U16())

	pad := func(n int) int { return n }
	switch version {
	case 1:
		pad = func(n int) int { return (n + 7) &^ 7 }
	case 2:
	case 3:
		d.U8() // name character set
	default:
		return nil, fmt.Errorf("attribute version %d", version)
	}
	if version > 1 && flags&0x03 != 0 {
		return nil, fmt.Errorf("shared attribute type or space: %w", ErrUnsupported)
	}

	m := &Attribute{Name: trimNull(d.Bytes(nameSize))}
	d.Skip(pad(nameSize) - nameSize)
	typeBytes := d.Bytes(pad(typeSize))
	spaceBytes := d.Bytes(pad(spaceSize))
	if err := d.Err(); err != nil {
		return nil, err
	}

	var err error
	if m.Datatype, err = decodeDatatype(binary.NewDecoder(typeBytes, d.Sizes())); err != nil {
		return nil, fmt.Errorf("attribute %q datatype: %w", m.Name, err)
	}
	if m.Dataspace, err = decodeDataspace(binary.NewDecoder(spaceBytes, d.Sizes())); err != nil {
		return nil, fmt.Errorf("attribute %q dataspace: %w", m.Name, err)
	}

	n := m.Dataspace.NumElements() * uint64(m.Datatype.Size)
	if n > uint64(d.Len()) {
		return nil, fmt.Errorf("attribute %q: %d data bytes, have %d: %w", m.Name, n, d.Len(), binary.ErrTruncated)
	}
	m.Data = d.Bytes(int(n))
	return m, nil
}

// Encode writes a version 3 attribute message.
func (m *Attribute) Encode(e *binary.Encoder) {
	dt := binary.NewEncoder(e.Sizes())
	m.Datatype.Encode(dt)
	ds := binary.NewEncoder(e.Sizes())
	m.Dataspace.Encode(ds)

	e.U8(3)
	e.U8(0)
	e.U16(uint16(len(m.Name) + 1))
	e.U16(uint16(dt.Len()))
	e.U16(uint16(ds.Len()))
	e.U8(CharsetASCII)
	e.String(m.Name)
	e.U8(0)
	e.Bytes(dt.Data())
	e.Bytes(ds.Data())
	e.Bytes(m.Data)
}
