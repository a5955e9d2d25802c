package message

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

// LinkKind is the type of a link.
type LinkKind uint8

const (
	LinkHard     LinkKind = 0
	LinkSoft     LinkKind = 1
	LinkExternal LinkKind = 64
)

// Link is one member of a new-style group.
type Link struct {
	Name    string
	Kind    LinkKind
	Address uint64 // hard links

	// Target is the path of a soft link, or "file:path" for an external
	// link.
	Target string
}

func (m *Link) Type() Type { return TypeLink }

// NewHardLink returns a hard link to the object header at addr.
func NewHardLink(name string, addr uint64) *Link {
	return &Link{Name: name, Kind: LinkHard, Address: addr}
}

func decodeLink(d *binary.Decoder) (*Link, error) {
	if v := d.U8(); v != 1 {
		return nil, fmt.Errorf("link version %d", v)
	}
	flags := d.U8()
	m := &Link{}
	if flags&0x08 != 0 {
		m.Kind = LinkKind(d.U8())
	}
	if flags&0x04 != 0 {
		d.U64() // creation order
	}
	if flags&0x10 != 0 {
		d.U8() // character set
	}
	m.Name = string(d.Bytes(int(d.Uint(1 << (flags & 0x03)))))

	switch m.Kind {
	case LinkHard:
		m.Address = d.Addr()
	case LinkSoft:
		m.Target = string(d.Bytes(int(d.U16())))
	case LinkExternal:
		info := d.Bytes(int(d.U16()))
		if len(info) > 0 {
			parts := bytes.SplitN(info[1:], []byte{0}, 3)
			if len(parts) >= 2 {
				m.Target = string(parts[0]) + ":" + string(parts[1])
			}
		}
	default:
		return nil, fmt.Errorf("link type %d: %w", m.Kind, ErrUnsupported)
	}
	return m, nil
}

// Encode writes a hard link message.
func (m *Link) Encode(e *binary.Encoder) {
	e.U8(1)
	width, flags := 1, uint8(0)
	switch n := len(m.Name); {
	case n > 0xffff:
		width, flags = 4, 2
	case n > 0xff:
		width, flags = 2, 1
	}
	e.U8(flags)
	e.Uint(uint64(len(m.Name)), width)
	e.String(m.Name)
	e.Addr(m.Address)
}
