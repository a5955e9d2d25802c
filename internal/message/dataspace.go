package message

import (
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

// Dataspace is the shape of a dataset or attribute.
type Dataspace struct {
	Dims    []uint64
	MaxDims []uint64
	Null    bool
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// NewDataspace returns a simple dataspace with fixed dimensions.
func NewDataspace(dims []uint64) *Dataspace {
	return &Dataspace{Dims: dims}
}

// NewScalarDataspace returns a dataspace holding a single element.
func NewScalarDataspace() *Dataspace {
	return &Dataspace{}
}

// IsScalar reports whether the dataspace holds one element with no
// dimensions.
func (m *Dataspace) IsScalar() bool { return len(m.Dims) == 0 && !m.Null }

func (m *Dataspace) Rank() int { return len(m.Dims) }

// NumElements returns the number of elements: 1 for a scalar, 0 for a null
// dataspace.
func (m *Dataspace) NumElements() uint64 {
	if m.Null {
		return 0
	}
	n := uint64(1)
	for _, d := range m.Dims {
		n *= d
	}
	return n
}

func decodeDataspace(d *binary.Decoder) (*Dataspace, error) {
	version := d.U8()
	rank := int(d.U8())
	flags := d.U8()
	m := &Dataspace{}

	switch version {
	case 1:
		d.Skip(5)
	case 2:
		switch kind := d.U8(); kind {
		case 0:
			return m, nil
		case 1:
		case 2:
			m.Null = true
			return m, nil
		default:
			return nil, fmt.Errorf("dataspace type %d", kind)
		}
	default:
		return nil, fmt.Errorf("dataspace version %d", version)
	}

	if rank > 32 {
		return nil, fmt.Errorf("dataspace rank %d", rank)
	}
	if rank == 0 {
		return m, nil
	}
	m.Dims = make([]uint64, rank)
	for i := range m.Dims {
		m.Dims[i] = d.Length()
	}
	if flags&0x01 != 0 {
		m.MaxDims = make([]uint64, rank)
		for i := range m.MaxDims {
			m.MaxDims[i] = d.Length()
		}
	}
	return m, nil
}

// Encode writes a version 2 dataspace message.
func (m *Dataspace) Encode(e *binary.Encoder) {
	e.U8(2)
	e.U8(uint8(len(m.Dims)))
	flags := uint8(0)
	if m.MaxDims != nil {
		flags |= 0x01
	}
	e.U8(flags)
	switch {
	case m.Null:
		e.U8(2)
	case len(m.Dims) == 0:
		e.U8(0)
	default:
		e.U8(1)
	}
	for _, v := range m.Dims {
		e.Length(v)
	}
	for _, v := range m.MaxDims {
		e.Length(v)
	}
}
