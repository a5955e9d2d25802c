// Package filter reverses the chunk filters HDF5 applies on write: deflate,
// byte shuffle and the Fletcher-32 checksum.
package filter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/klauspost/compress/zlib"

	"github.com/robert-malhotra/go-odim/internal/message"
)

// Filter identifiers.
const (
	Deflate    uint16 = 1
	Shuffle    uint16 = 2
	Fletcher32 uint16 = 3
)

// Decode undoes the pipeline on one chunk. Filters run in reverse order and
// those whose bit is set in mask were skipped when the chunk was written.
// elemSize is the datatype size, needed by shuffle.
func Decode(p *message.FilterPipeline, mask uint32, chunk []byte, elemSize int) ([]byte, error) {
	if p == nil {
		return chunk, nil
	}
	var err error
	for i := len(p.Filters) - 1; i >= 0; i-- {
		if i < 32 && mask&(1<<uint(i)) != 0 {
			continue
		}
		f := p.Filters[i]
		switch f.ID {
		case Deflate:
			chunk, err = inflate(chunk)
		case Shuffle:
			chunk = unshuffle(chunk, elemSize)
		case Fletcher32:
			chunk, err = verifyFletcher32(chunk)
		default:
			err = fmt.Errorf("filter %d %q: %w", f.ID, f.Name, message.ErrUnsupported)
		}
		if err != nil {
			return nil, err
		}
	}
	return chunk, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return out, nil
}

// unshuffle regroups the bytes of elements stored plane by plane: all first
// bytes, then all second bytes and so on. Trailing bytes that do not form a
// whole element are left in place.
func unshuffle(data []byte, elemSize int) []byte {
	if elemSize <= 1 {
		return data
	}
	n := len(data) / elemSize
	out := make([]byte, len(data))
	for b := 0; b < elemSize; b++ {
		plane := data[b*n : (b+1)*n]
		for i, v := range plane {
			out[i*elemSize+b] = v
		}
	}
	copy(out[n*elemSize:], data[n*elemSize:])
	return out
}

// verifyFletcher32 checks and strips the checksum appended to a chunk.
// Older library versions stored it byte swapped, so both orders are
// accepted.
func verifyFletcher32(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("fletcher32: chunk of %d bytes", len(data))
	}
	n := len(data) - 4
	sum := fletcher32(data[:n])
	stored := binary.LittleEndian.Uint32(data[n:])
	if stored != sum && stored != bits.ReverseBytes32(sum) {
		return nil, fmt.Errorf("fletcher32: checksum %#x, computed %#x", stored, sum)
	}
	return data[:n], nil
}

// fletcher32 sums big-endian 16-bit words, padding an odd final byte with
// zero.
func fletcher32(data []byte) uint32 {
	var sum1, sum2 uint32
	for len(data) > 0 {
		// 360 words keep the sums from overflowing before they are folded.
		n := len(data) / 2
		if n > 360 {
			n = 360
		}
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			sum1 += uint32(data[2*i])<<8 | uint32(data[2*i+1])
			sum2 += sum1
		}
		data = data[2*n:]
		sum1 = sum1&0xffff + sum1>>16
		sum2 = sum2&0xffff + sum2>>16
	}
	if len(data) == 1 {
		sum1 += uint32(data[0]) << 8
		sum2 += sum1
		sum1 = sum1&0xffff + sum1>>16
		sum2 = sum2&0xffff + sum2>>16
	}
	sum1 = sum1&0xffff + sum1>>16
	sum2 = sum2&0xffff + sum2>>16
	return sum2<<16 | sum1
}
