package superblock

import (
	"bytes"
	"errors"
	"testing"

	"github.com/robert-malhotra/go-odim/internal/binary"
)

func read(t *testing.T, buf []byte) (*Superblock, error) {
	t.Helper()
	return Read(bytes.NewReader(buf), int64(len(buf)))
}

func TestEncodeRoundTrip(t *testing.T) {
	buf := (&Superblock{EOF: 4096, Root: 48}).Encode()
	if len(buf) != EncodedSize {
		t.Fatalf("encoded %d bytes, want %d", len(buf), EncodedSize)
	}
	sb, err := read(t, buf)
	if err != nil {
		t.Fatal(err)
	}
	if sb.Version != 3 || sb.Root != 48 || sb.EOF != 4096 || sb.Base != 0 {
		t.Errorf("decoded %+v", sb)
	}
	if sb.Sizes != (binary.Sizes{Offset: 8, Length: 8}) {
		t.Errorf("sizes %+v", sb.Sizes)
	}
}

func TestChecksumMismatch(t *testing.T) {
	buf := (&Superblock{EOF: 4096, Root: 48}).Encode()
	buf[len(buf)-10] ^= 0xff
	if _, err := read(t, buf); err == nil {
		t.Error("corrupted superblock accepted")
	}
}

func TestUserBlock(t *testing.T) {
	buf := append(make([]byte, 512), (&Superblock{EOF: 100, Root: 48}).Encode()...)
	sb, err := read(t, buf)
	if err != nil {
		t.Fatal(err)
	}
	if sb.Root != 48 {
		t.Errorf("Root = %d", sb.Root)
	}
}

func TestNoSignature(t *testing.T) {
	for _, buf := range [][]byte{nil, []byte("plain text"), bytes.Repeat([]byte{0xff}, 4096)} {
		if _, err := read(t, buf); !errors.Is(err, ErrNoSignature) {
			t.Errorf("Read(%d bytes) = %v, want ErrNoSignature", len(buf), err)
		}
	}
}

func TestTruncated(t *testing.T) {
	buf := (&Superblock{EOF: 4096, Root: 48}).Encode()
	if _, err := read(t, buf[:20]); err == nil {
		t.Error("truncated superblock accepted")
	}
}

func TestVersion0(t *testing.T) {
	e := binary.NewEncoder(binary.Sizes{Offset: 8, Length: 8})
	e.String(Signature)
	e.Bytes([]byte{0, 0, 0, 0, 0}) // versions and reserved
	e.U8(8)
	e.U8(8)
	e.U8(0)
	e.U16(4)
	e.U16(16)
	e.U32(0)
	e.Addr(0)                // base
	e.Addr(binary.Undefined) // free space
	e.Addr(2048)             // end of file
	e.Addr(binary.Undefined) // driver info
	e.Addr(0)                // link name offset
	e.Addr(96)               // root object header
	e.U32(1)                 // cached symbol table
	e.U32(0)
	e.Addr(136)
	e.Addr(680)

	sb, err := read(t, e.Data())
	if err != nil {
		t.Fatal(err)
	}
	if sb.Version != 0 || sb.Root != 96 || sb.EOF != 2048 {
		t.Errorf("decoded %+v", sb)
	}
	if sb.RootBTree != 136 || sb.RootHeap != 680 {
		t.Errorf("cached symbol table = %d, %d", sb.RootBTree, sb.RootHeap)
	}
}

func TestUnsupportedVersion(t *testing.T) {
	buf := (&Superblock{}).Encode()
	buf[len(Signature)] = 9
	if _, err := read(t, buf); err == nil {
		t.Error("version 9 accepted")
	}
}
