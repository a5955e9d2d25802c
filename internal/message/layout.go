package message

import (
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

// LayoutClass is the storage class of a dataset.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

// ChunkIndex identifies how the chunks of a dataset are located.
type ChunkIndex uint8

const (
	// IndexBTreeV1 is the only index of layout versions 1 to 3.
	IndexBTreeV1 ChunkIndex = 0

	// Version 4 index types.
	IndexSingleChunk     ChunkIndex = 1
	IndexImplicit        ChunkIndex = 2
	IndexFixedArray      ChunkIndex = 3
	IndexExtensibleArray ChunkIndex = 4
	IndexBTreeV2         ChunkIndex = 5
)

// Layout is a data layout message.
type Layout struct {
	Version uint8
	Class   LayoutClass

	// Compact data.
	Data []byte

	// Contiguous storage, or the chunk index of chunked storage. Size is
	// zero when versions 1 and 2 leave it to be derived from the dataspace.
	Address uint64
	Size    uint64

	// Chunked storage. ChunkDims has one entry per dataset dimension;
	// the element size the file appends to it is dropped.
	ChunkDims []uint64
	Index     ChunkIndex

	// Filtered single-chunk storage.
	FilteredSize uint64
	FilterMask   uint32
}

func (m *Layout) Type() Type { return TypeLayout }

// NewContiguousLayout returns a version 3 contiguous layout.
func NewContiguousLayout(addr, size uint64) *Layout {
	return &Layout{Version: 3, Class: LayoutContiguous, Address: addr, Size: size}
}

func decodeLayout(d *binary.Decoder) (*Layout, error) {
	m := &Layout{Version: d.U8()}
	switch m.Version {
	case 1, 2:
		return m, m.decodeV1(d)
	case 3, 4:
		return m, m.decodeV3(d)
	}
	return nil, fmt.Errorf("layout version %d", m.Version)
}

func (m *Layout) decodeV1(d *binary.Decoder) error {
	ndims := int(d.U8())
	m.Class = LayoutClass(d.U8())
	d.Skip(5)
	if m.Class != LayoutCompact {
		m.Address = d.Addr()
	}
	dims := make([]uint64, ndims)
	for i := range dims {
		dims[i] = uint64(d.U32())
	}
	switch m.Class {
	case LayoutCompact:
		m.Data = d.Bytes(int(d.U32()))
	case LayoutChunked:
		if ndims < 2 {
			return fmt.Errorf("chunked layout with %d dimensions", ndims)
		}
		m.ChunkDims = dims[:ndims-1]
	}
	return nil
}

func (m *Layout) decodeV3(d *binary.Decoder) error {
	m.Class = LayoutClass(d.U8())
	switch m.Class {
	case LayoutCompact:
		m.Data = d.Bytes(int(d.U16()))
	case LayoutContiguous:
		m.Address = d.Addr()
		m.Size = d.Length()
	case LayoutChunked:
		if m.Version == 3 {
			ndims := int(d.U8())
			m.Address = d.Addr()
			dims := make([]uint64, ndims)
			for i := range dims {
				dims[i] = uint64(d.U32())
			}
			if ndims < 2 {
				return fmt.Errorf("chunked layout with %d dimensions", ndims)
			}
			m.ChunkDims = dims[:ndims-1]
			return nil
		}
		return m.decodeChunkedV4(d)
	case LayoutVirtual:
		return fmt.Errorf("virtual dataset: %w", ErrUnsupported)
	default:
		return fmt.Errorf("layout class %d", m.Class)
	}
	return nil
}

func (m *Layout) decodeChunkedV4(d *binary.Decoder) error {
	flags := d.U8()
	ndims := int(d.U8())
	width := int(d.U8())
	if ndims < 2 || width < 1 || width > 8 {
		return fmt.Errorf("chunked layout with %d dimensions of %d bytes", ndims, width)
	}
	dims := make([]uint64, ndims)
	for i := range dims {
		dims[i] = d.Uint(width)
	}
	m.ChunkDims = dims[:ndims-1]

	m.Index = ChunkIndex(d.U8())
	switch m.Index {
	case IndexSingleChunk:
		if flags&0x02 != 0 {
			m.FilteredSize = d.Length()
			m.FilterMask = d.U32()
		}
	case IndexImplicit:
	case IndexFixedArray, IndexExtensibleArray, IndexBTreeV2:
		return fmt.Errorf("chunk index type %d: %w", m.Index, ErrUnsupported)
	default:
		return fmt.Errorf("chunk index type %d", m.Index)
	}
	m.Address = d.Addr()
	return nil
}

// Encode writes a contiguous layout message.
func (m *Layout) Encode(e *binary.Encoder) {
	e.U8(3)
	e.U8(uint8(LayoutContiguous))
	e.Addr(m.Address)
	e.Length(m.Size)
}
