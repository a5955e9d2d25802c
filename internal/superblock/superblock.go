// Package superblock locates and decodes the HDF5 superblock, versions 0
// through 3, and encodes the version 3 superblock used for new files.
package superblock

import (
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

// Signature starts every HDF5 superblock.
const Signature = "\x89HDF\r\n\x1a\n"

// EncodedSize is the size of the superblock written by Encode.
const EncodedSize = 48

// ErrNoSignature is returned when no superblock signature is found.
var ErrNoSignature = errors.New("no HDF5 signature")

// Superblock holds the fields of the superblock needed to read a file.
type Superblock struct {
	Version uint8
	Sizes   binary.Sizes

	// Base is the absolute file offset all other addresses are relative to.
	Base uint64
	EOF  uint64

	// Root is the address of the root group's object header.
	Root uint64

	// RootBTree and RootHeap come from the root symbol table entry of
	// version 0 and 1 superblocks when its scratch pad caches them.
	RootBTree uint64
	RootHeap  uint64
}

// Read searches r for the superblock at offsets 0, 512, 1024, 2048 and so
// on, and decodes the first one found.
func Read(r io.ReaderAt, size int64) (*Superblock, error) {
	sig := make([]byte, len(Signature))
	for off := int64(0); off+int64(len(Signature)) <= size; off = nextOffset(off) {
		if _, err := r.ReadAt(sig, off); err != nil {
			return nil, err
		}
		if string(sig) != Signature {
			continue
		}

		n := size - off
		if n > 256 {
			n = 256
		}
		buf := make([]byte, n)
		if _, err := r.ReadAt(buf, off); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return decode(buf)
	}
	return nil, ErrNoSignature
}

func nextOffset(off int64) int64 {
	if off == 0 {
		return 512
	}
	return off * 2
}

func decode(buf []byte) (*Superblock, error) {
	if len(buf) < len(Signature)+3 {
		return nil, fmt.Errorf("superblock: %w", binary.ErrTruncated)
	}
	sb := &Superblock{Version: buf[len(Signature)]}
	var err error
	switch sb.Version {
	case 0, 1:
		err = sb.decodeV0(buf)
	case 2, 3:
		err = sb.decodeV2(buf)
	default:
		return nil, fmt.Errorf("superblock version %d not supported", sb.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("superblock v%d: %w", sb.Version, err)
	}
	return sb, nil
}

func checkSizes(s binary.Sizes) error {
	for _, n := range []int{s.Offset, s.Length} {
		if n != 2 && n != 4 && n != 8 {
			return fmt.Errorf("field width %d not supported", n)
		}
	}
	return nil
}

func (sb *Superblock) decodeV0(buf []byte) error {
	pre := binary.NewDecoder(buf, binary.Sizes{})
	pre.Skip(len(Signature) + 5) // versions of the superblock, free space, root entry, reserved, shared messages
	sb.Sizes = binary.Sizes{Offset: int(pre.U8()), Length: int(pre.U8())}
	if err := pre.Err(); err != nil {
		return err
	}
	if err := checkSizes(sb.Sizes); err != nil {
		return err
	}

	d := binary.NewDecoder(buf, sb.Sizes)
	d.Skip(pre.Pos())
	d.Skip(1) // reserved
	d.Skip(4) // group leaf and internal node K
	d.Skip(4) // consistency flags
	if sb.Version == 1 {
		d.Skip(4) // indexed storage K and reserved
	}
	sb.Base = d.Addr()
	d.Addr() // free space info
	sb.EOF = d.Addr()
	d.Addr() // driver info

	// Root group symbol table entry.
	d.Addr() // link name offset
	sb.Root = d.Addr()
	cacheType := d.U32()
	d.Skip(4)
	scratch := d.Bytes(16)
	if err := d.Err(); err != nil {
		return err
	}
	if cacheType == 1 {
		s := binary.NewDecoder(scratch, sb.Sizes)
		sb.RootBTree = s.Addr()
		sb.RootHeap = s.Addr()
	}
	return nil
}

func (sb *Superblock) decodeV2(buf []byte) error {
	if len(buf) < len(Signature)+3 {
		return binary.ErrTruncated
	}
	sb.Sizes = binary.Sizes{Offset: int(buf[len(Signature)+1]), Length: int(buf[len(Signature)+2])}
	if err := checkSizes(sb.Sizes); err != nil {
		return err
	}

	d := binary.NewDecoder(buf, sb.Sizes)
	d.Skip(len(Signature) + 4) // signature, version, widths, flags
	sb.Base = d.Addr()
	d.Addr() // superblock extension
	sb.EOF = d.Addr()
	sb.Root = d.Addr()
	end := d.Pos()
	d.U32()
	if err := d.Err(); err != nil {
		return err
	}
	if !binary.VerifyChecksum(buf[:end+4]) {
		return errors.New("checksum mismatch")
	}
	return nil
}

// Encode returns a version 3 superblock with eight-byte addresses and
// lengths, no base offset and no extension.
func (sb *Superblock) Encode() []byte {
	e := binary.NewEncoder(binary.Sizes{Offset: 8, Length: 8})
	e.String(Signature)
	e.U8(3)
	e.U8(8)
	e.U8(8)
	e.U8(0) // file consistency flags
	e.Addr(0)
	e.Addr(binary.Undefined)
	e.Addr(sb.EOF)
	e.Addr(sb.Root)
	e.Checksum(0)
	return e.Data()
}
