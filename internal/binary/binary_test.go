package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestLookup3(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0xdeadbeef},
		{"Four score and seven years ago", 0x17770551},
	}
	for _, tt := range tests {
		if got := Lookup3([]byte(tt.in)); got != tt.want {
			t.Errorf("Lookup3(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestVerifyChecksum(t *testing.T) {
	e := NewEncoder(Sizes{8, 8})
	e.String("OHDR")
	e.U8(2)
	e.Checksum(0)
	block := e.Data()

	if !VerifyChecksum(block) {
		t.Fatal("checksum of freshly encoded block does not verify")
	}
	block[4] = 3
	if VerifyChecksum(block) {
		t.Error("corrupted block verified")
	}
	if VerifyChecksum([]byte{1, 2}) {
		t.Error("short block verified")
	}
}

func TestDecoderFields(t *testing.T) {
	e := NewEncoder(Sizes{Offset: 4, Length: 2})
	e.String("TREE")
	e.U8(7)
	e.U16(0x1234)
	e.U32(0xdeadbeef)
	e.Addr(0x01020304)
	e.Addr(0xffffffff)
	e.Length(300)
	e.U64(1 << 40)

	d := NewDecoder(e.Data(), Sizes{Offset: 4, Length: 2})
	d.Signature("TREE")
	if v := d.U8(); v != 7 {
		t.Errorf("U8 = %d", v)
	}
	if v := d.U16(); v != 0x1234 {
		t.Errorf("U16 = %#x", v)
	}
	if v := d.U32(); v != 0xdeadbeef {
		t.Errorf("U32 = %#x", v)
	}
	if v := d.Addr(); v != 0x01020304 {
		t.Errorf("Addr = %#x", v)
	}
	if v := d.Addr(); v != Undefined {
		t.Errorf("all-ones address = %#x, want Undefined", v)
	}
	if v := d.Length(); v != 300 {
		t.Errorf("Length = %d", v)
	}
	if v := d.U64(); v != 1<<40 {
		t.Errorf("U64 = %d", v)
	}
	if err := d.Err(); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 0 {
		t.Errorf("%d bytes left", d.Len())
	}
}

func TestDecoderStickyError(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3}, Sizes{8, 8})
	d.U16()
	if v := d.U32(); v != 0 {
		t.Errorf("read past end returned %d", v)
	}
	if v := d.U8(); v != 0 {
		t.Errorf("read after error returned %d", v)
	}
	if !errors.Is(d.Err(), ErrTruncated) {
		t.Errorf("Err = %v, want ErrTruncated", d.Err())
	}

	d = NewDecoder([]byte("SNOD"), Sizes{8, 8})
	d.Signature("TREE")
	if d.Err() == nil {
		t.Error("wrong signature accepted")
	}
}

func TestDecoderAlign(t *testing.T) {
	d := NewDecoder(make([]byte, 16), Sizes{8, 8})
	d.Skip(3)
	d.Align(8)
	if d.Pos() != 8 {
		t.Errorf("Pos after Align = %d, want 8", d.Pos())
	}
	d.Align(8)
	if d.Pos() != 8 {
		t.Errorf("Align on boundary moved to %d", d.Pos())
	}
}

func TestReader(t *testing.T) {
	data := []byte("..userblock..HDFDATA")
	r := NewReader(bytes.NewReader(data), int64(len(data)), 13, Sizes{8, 8})

	got, err := r.ReadAt(0, 3)
	if err != nil || string(got) != "HDF" {
		t.Fatalf("ReadAt(0, 3) = %q, %v", got, err)
	}
	if _, err := r.ReadAt(5, 10); !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadAt past end: %v", err)
	}
	if _, err := r.ReadAt(Undefined, 1); err == nil {
		t.Error("ReadAt(Undefined) succeeded")
	}

	got, err = r.ReadUpTo(3, 100)
	if err != nil || string(got) != "DATA" {
		t.Errorf("ReadUpTo = %q, %v", got, err)
	}
}
