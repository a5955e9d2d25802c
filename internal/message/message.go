// Package message decodes the object header messages this module reads and
// encodes the subset the writer emits.
package message

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

// ErrUnsupported marks valid HDF5 features this module does not handle.
var ErrUnsupported = errors.New("unsupported feature")

// Type is an object header message type.
type Type uint16

const (
	TypeNil            Type = 0x00
	TypeDataspace      Type = 0x01
	TypeLinkInfo       Type = 0x02
	TypeDatatype       Type = 0x03
	TypeFillValueOld   Type = 0x04
	TypeFillValue      Type = 0x05
	TypeLink           Type = 0x06
	TypeLayout         Type = 0x08
	TypeGroupInfo      Type = 0x0A
	TypeFilterPipeline Type = 0x0B
	TypeAttribute      Type = 0x0C
	TypeContinuation   Type = 0x10
	TypeSymbolTable    Type = 0x11
	TypeAttributeInfo  Type = 0x15
)

// Message is a decoded header message.
type Message interface {
	Type() Type
}

// Encoder is implemented by messages the writer can emit.
type Encoder interface {
	Message
	Encode(e *binary.Encoder)
}

// Unknown keeps the raw bytes of a message type that is not decoded.
type Unknown struct {
	Kind Type
	Data []byte
}

func (m *Unknown) Type() Type { return m.Kind }

// Shared stands in for a message stored elsewhere in the file and referenced
// from the header. Shared messages are not followed.
type Shared struct {
	Kind Type
}

func (m *Shared) Type() Type { return m.Kind }

// Decode decodes one message body.
func Decode(t Type, data []byte, sizes binary.Sizes) (Message, error) {
	d := binary.NewDecoder(data, sizes)
	var (
		m   Message
		err error
	)
	switch t {
	case TypeDataspace:
		m, err = decodeDataspace(d)
	case TypeDatatype:
		m, err = decodeDatatype(d)
	case TypeLinkInfo:
		m, err = decodeLinkInfo(d)
	case TypeLink:
		m, err = decodeLink(d)
	case TypeLayout:
		m, err = decodeLayout(d)
	case TypeFilterPipeline:
		m, err = decodeFilterPipeline(d)
	case TypeAttribute:
		m, err = decodeAttribute(d)
	case TypeContinuation:
		m, err = decodeContinuation(d)
	case TypeSymbolTable:
		m, err = decodeSymbolTable(d)
	default:
		return &Unknown{Kind: t, Data: data}, nil
	}
	if err == nil {
		err = d.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("message %#x: %w", uint16(t), err)
	}
	return m, nil
}

// Continuation points at the next block of header messages.
type Continuation struct {
	Address uint64
	Length  uint64
}

func (m *Continuation) Type() Type { return TypeContinuation }

func decodeContinuation(d *binary.Decoder) (*Continuation, error) {
	return &Continuation{Address: d.Addr(), Length: d.Length()}, nil
}

// SymbolTable locates the B-tree and local heap of an old-style group.
type SymbolTable struct {
	BTree uint64
	Heap  uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func decodeSymbolTable(d *binary.Decoder) (*SymbolTable, error) {
	return &SymbolTable{BTree: d.Addr(), Heap: d.Addr()}, nil
}

// LinkInfo describes how the links of a new-style group are stored. A
// defined heap address means dense storage in a fractal heap.
type LinkInfo struct {
	FractalHeap uint64
	NameIndex   uint64
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// Dense reports whether the links live in a fractal heap rather than in
// link messages.
func (m *LinkInfo) Dense() bool { return m.FractalHeap != binary.Undefined }

func decodeLinkInfo(d *binary.Decoder) (*LinkInfo, error) {
	if v := d.U8(); v != 0 {
		return nil, fmt.Errorf("link info version %d", v)
	}
	flags := d.U8()
	if flags&0x01 != 0 {
		d.U64() // maximum creation index
	}
	m := &LinkInfo{FractalHeap: d.Addr(), NameIndex: d.Addr()}
	return m, nil
}

// Encode writes a link info message for compact storage.
func (m *LinkInfo) Encode(e *binary.Encoder) {
	e.U8(0)
	e.U8(0)
	e.Addr(m.FractalHeap)
	e.Addr(m.NameIndex)
}

// NewCompactLinkInfo returns the link info of a group whose links are all
// held in its header.
func NewCompactLinkInfo() *LinkInfo {
	return &LinkInfo{FractalHeap: binary.Undefined, NameIndex: binary.Undefined}
}

// GroupInfo carries the storage hints of a new-style group. Only the
// default, empty form is written.
type GroupInfo struct{}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

func (m *GroupInfo) Encode(e *binary.Encoder) {
	e.U8(0)
	e.U8(0)
}
