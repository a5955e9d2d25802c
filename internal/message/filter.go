package message

import (
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

// Filter is one stage of a filter pipeline.
type Filter struct {
	ID     uint16
	Flags  uint16
	Name   string
	Params []uint32
}

// Optional reports whether a chunk may skip the filter.
func (f Filter) Optional() bool { return f.Flags&0x01 != 0 }

// FilterPipeline lists the filters applied to chunks, in encoding order.
type FilterPipeline struct {
	Filters []Filter
}

func (m *FilterPipeline) Type() Type { return TypeFilterPipeline }

func decodeFilterPipeline(d *binary.Decoder) (*FilterPipeline, error) {
	version := d.U8()
	n := int(d.U8())
	switch version {
	case 1:
		d.Skip(6)
	case 2:
	default:
		return nil, fmt.Errorf("filter pipeline version %d", version)
	}

	m := &FilterPipeline{Filters: make([]Filter, 0, n)}
	for i := 0; i < n && d.Err() == nil; i++ {
		var f Filter
		f.ID = d.U16()
		nameLen := 0
		if version == 1 || f.ID >= 256 {
			nameLen = int(d.U16())
		}
		f.Flags = d.U16()
		nparams := int(d.U16())
		if nameLen > 0 {
			name := d.Bytes(nameLen)
			if version == 1 {
				if r := nameLen % 8; r != 0 {
					d.Skip(8 - r)
				}
			}
			f.Name = trimNull(name)
		}
		f.Params = make([]uint32, nparams)
		for j := range f.Params {
			f.Params[j] = d.U32()
		}
		if version == 1 && nparams%2 == 1 {
			d.Skip(4)
		}
		m.Filters = append(m.Filters, f)
	}
	return m, nil
}

func trimNull(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
