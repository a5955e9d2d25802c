// Package layout assembles the raw bytes of a dataset from its compact,
// contiguous or chunked storage.
package layout

import (
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
	"github.com/robert-malhotra/go-odim/internal/btree"
	"github.com/robert-malhotra/go-odim/internal/filter"
	"github.com/robert-malhotra/go-odim/internal/message"
)

// maxBytes caps the size of a dataset read in one piece.
const maxBytes = 1 << 34

// Dataset bundles the messages that describe how a dataset is stored.
type Dataset struct {
	Layout    *message.Layout
	Dataspace *message.Dataspace
	Datatype  *message.Datatype
	Filters   *message.FilterPipeline
}

// Read returns every element of the dataset in row-major order. Storage
// that was never allocated reads as zeros.
func Read(r *binary.Reader, ds Dataset) ([]byte, error) {
	elemSize := uint64(ds.Datatype.Size)
	total := ds.Dataspace.NumElements() * elemSize
	if total > maxBytes {
		return nil, fmt.Errorf("dataset of %d bytes is too large to read at once", total)
	}

	switch ds.Layout.Class {
	case message.LayoutCompact:
		out := make([]byte, total)
		copy(out, ds.Layout.Data)
		return out, nil

	case message.LayoutContiguous:
		if ds.Layout.Address == binary.Undefined {
			return make([]byte, total), nil
		}
		if ds.Layout.Size != 0 && ds.Layout.Size < total {
			return nil, fmt.Errorf("contiguous storage of %d bytes for %d bytes of data", ds.Layout.Size, total)
		}
		return r.ReadAt(ds.Layout.Address, int(total))

	case message.LayoutChunked:
		return readChunked(r, ds, total)
	}
	return nil, fmt.Errorf("layout class %d: %w", ds.Layout.Class, message.ErrUnsupported)
}

func readChunked(r *binary.Reader, ds Dataset, total uint64) ([]byte, error) {
	dims := ds.Dataspace.Dims
	chunkDims := ds.Layout.ChunkDims
	if len(chunkDims) != len(dims) {
		return nil, fmt.Errorf("chunk rank %d for dataset rank %d", len(chunkDims), len(dims))
	}
	elemSize := int(ds.Datatype.Size)
	chunkBytes := uint64(elemSize)
	for _, c := range chunkDims {
		if c == 0 {
			return nil, fmt.Errorf("zero chunk dimension in %v", chunkDims)
		}
		chunkBytes *= c
	}

	out := make([]byte, total)
	if ds.Layout.Address == binary.Undefined {
		return out, nil
	}

	chunks, err := locate(r, ds, chunkBytes)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		stored, err := r.ReadAt(c.Address, int(c.Size))
		if err != nil {
			return nil, fmt.Errorf("chunk at %v: %w", c.Offset, err)
		}
		data, err := filter.Decode(ds.Filters, c.Mask, stored, elemSize)
		if err != nil {
			return nil, fmt.Errorf("chunk at %v: %w", c.Offset, err)
		}
		if uint64(len(data)) < chunkBytes {
			return nil, fmt.Errorf("chunk at %v holds %d bytes, want %d", c.Offset, len(data), chunkBytes)
		}
		place(out, data, dims, chunkDims, c.Offset, elemSize)
	}
	return out, nil
}

// locate lists the stored chunks of a dataset.
func locate(r *binary.Reader, ds Dataset, chunkBytes uint64) ([]btree.Chunk, error) {
	l := ds.Layout
	rank := len(ds.Dataspace.Dims)
	switch l.Index {
	case message.IndexBTreeV1:
		return btree.Chunks(r, l.Address, rank)

	case message.IndexSingleChunk:
		size := chunkBytes
		if l.FilteredSize != 0 {
			size = l.FilteredSize
		}
		return []btree.Chunk{{Offset: make([]uint64, rank), Size: uint32(size), Mask: l.FilterMask, Address: l.Address}}, nil

	case message.IndexImplicit:
		// Unfiltered chunks stored back to back in row-major grid order.
		var chunks []btree.Chunk
		grid := make([]uint64, rank)
		for i := range grid {
			grid[i] = (ds.Dataspace.Dims[i] + l.ChunkDims[i] - 1) / l.ChunkDims[i]
		}
		eachIndex(grid, func(idx []uint64) {
			off := make([]uint64, rank)
			for i := range idx {
				off[i] = idx[i] * l.ChunkDims[i]
			}
			addr := l.Address + uint64(len(chunks))*chunkBytes
			chunks = append(chunks, btree.Chunk{Offset: off, Size: uint32(chunkBytes), Address: addr})
		})
		return chunks, nil
	}
	return nil, fmt.Errorf("chunk index %d: %w", l.Index, message.ErrUnsupported)
}

// eachIndex calls fn for every index of a grid of the given extent, last
// dimension fastest. The slice passed to fn is reused.
func eachIndex(extent []uint64, fn func(idx []uint64)) {
	for _, e := range extent {
		if e == 0 {
			return
		}
	}
	idx := make([]uint64, len(extent))
	for {
		fn(idx)
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < extent[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// place copies the part of a chunk that lies inside the dataset into out.
// Chunks on the upper edges extend past the dataset and are clipped.
func place(out, chunk []byte, dims, chunkDims, offset []uint64, elemSize int) {
	rank := len(dims)
	if rank == 0 {
		copy(out, chunk)
		return
	}
	// Extent of the chunk inside the dataset.
	extent := make([]uint64, rank)
	for i := range dims {
		if offset[i] >= dims[i] {
			return
		}
		extent[i] = chunkDims[i]
		if offset[i]+extent[i] > dims[i] {
			extent[i] = dims[i] - offset[i]
		}
	}

	rowBytes := int(extent[rank-1]) * elemSize
	rows := append([]uint64(nil), extent[:rank-1]...)
	eachIndex(rows, func(idx []uint64) {
		var src, dst uint64
		for i := 0; i < rank-1; i++ {
			src = src*chunkDims[i] + idx[i]
			dst = dst*dims[i] + offset[i] + idx[i]
		}
		src = src * chunkDims[rank-1]
		dst = dst*dims[rank-1] + offset[rank-1]
		s, d := int(src)*elemSize, int(dst)*elemSize
		copy(out[d:d+rowBytes], chunk[s:s+rowBytes])
	})
}
