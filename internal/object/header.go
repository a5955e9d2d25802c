// Package object reads HDF5 object headers, versions 1 and 2, following
// continuation blocks, and encodes version 2 headers for the writer.
package object

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
	"github.com/robert-malhotra/go-odim/internal/message"
)

// maxBlocks bounds the number of continuation blocks followed, so a cycle
// in a corrupt file cannot loop forever.
const maxBlocks = 1024

// Header is a decoded object header.
type Header struct {
	Version  uint8
	Messages []message.Message
}

// Find returns the first message of type t, or nil.
func (h *Header) Find(t message.Type) message.Message {
	for _, m := range h.Messages {
		if m.Type() == t {
			return m
		}
	}
	return nil
}

// All returns every message of type t in header order.
func (h *Header) All(t message.Type) []message.Message {
	var out []message.Message
	for _, m := range h.Messages {
		if m.Type() == t {
			out = append(out, m)
		}
	}
	return out
}

// Read decodes the object header at addr.
func Read(r *binary.Reader, addr uint64) (*Header, error) {
	prefix, err := r.ReadUpTo(addr, 4)
	if err != nil {
		return nil, fmt.Errorf("object header at %#x: %w", addr, err)
	}
	var h *Header
	if string(prefix) == "OHDR" {
		h, err = readV2(r, addr)
	} else {
		h, err = readV1(r, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("object header at %#x: %w", addr, err)
	}
	return h, nil
}

type block struct {
	addr, size uint64
}

// reader accumulates the messages of one header across its blocks.
type reader struct {
	r       *binary.Reader
	h       *Header
	pending []block
}

func (rd *reader) add(t message.Type, flags uint8, data []byte) error {
	switch {
	case t == message.TypeNil:
		return nil
	case flags&0x02 != 0:
		rd.h.Messages = append(rd.h.Messages, &message.Shared{Kind: t})
		return nil
	}
	m, err := message.Decode(t, data, rd.r.Sizes())
	if err != nil {
		return err
	}
	if c, ok := m.(*message.Continuation); ok {
		if len(rd.pending) >= maxBlocks {
			return errors.New("too many continuation blocks")
		}
		rd.pending = append(rd.pending, block{c.Address, c.Length})
		return nil
	}
	rd.h.Messages = append(rd.h.Messages, m)
	return nil
}

func (rd *reader) next() (block, bool) {
	if len(rd.pending) == 0 {
		return block{}, false
	}
	b := rd.pending[0]
	rd.pending = rd.pending[1:]
	return b, true
}

func readV1(r *binary.Reader, addr uint64) (*Header, error) {
	d, err := r.Decoder(addr, 16)
	if err != nil {
		return nil, err
	}
	version := d.U8()
	if version != 1 {
		return nil, fmt.Errorf("object header version %d", version)
	}
	d.Skip(1)
	nmsgs := int(d.U16())
	d.U32() // reference count
	size := d.U32()

	rd := &reader{r: r, h: &Header{Version: 1}}
	// Messages start after the 12-byte prefix padded to eight bytes.
	blk := block{addr + 16, uint64(size)}
	seen := 0
	for blocks := 0; ; blocks++ {
		if blocks > maxBlocks {
			return nil, errors.New("too many continuation blocks")
		}
		buf, err := r.ReadAt(blk.addr, int(blk.size))
		if err != nil {
			return nil, err
		}
		md := r.Decode(buf)
		for md.Len() >= 8 && seen < nmsgs {
			t := message.Type(md.U16())
			n := int(md.U16())
			flags := md.U8()
			md.Skip(3)
			data := md.Bytes(n)
			if err := md.Err(); err != nil {
				return nil, err
			}
			seen++
			if err := rd.add(t, flags, data); err != nil {
				return nil, err
			}
		}
		var ok bool
		if blk, ok = rd.next(); !ok {
			return rd.h, nil
		}
	}
}

func readV2(r *binary.Reader, addr uint64) (*Header, error) {
	pre, err := r.ReadUpTo(addr, 4+2+16+4+8)
	if err != nil {
		return nil, err
	}
	d := r.Decode(pre)
	d.Signature("OHDR")
	version := d.U8()
	if version != 2 {
		return nil, fmt.Errorf("object header version %d", version)
	}
	flags := d.U8()
	if flags&0x20 != 0 {
		d.Skip(16) // times
	}
	if flags&0x10 != 0 {
		d.Skip(4) // attribute phase change
	}
	chunk := d.Uint(1 << (flags & 0x03))
	if err := d.Err(); err != nil {
		return nil, err
	}

	start := uint64(d.Pos())
	buf, err := r.ReadAt(addr, int(start+chunk+4))
	if err != nil {
		return nil, err
	}
	if !binary.VerifyChecksum(buf) {
		return nil, errors.New("object header checksum mismatch")
	}

	rd := &reader{r: r, h: &Header{Version: 2}}
	if err := rd.messagesV2(buf[start:start+chunk], flags); err != nil {
		return nil, err
	}
	for blocks := 0; ; blocks++ {
		blk, ok := rd.next()
		if !ok {
			return rd.h, nil
		}
		if blocks > maxBlocks {
			return nil, errors.New("too many continuation blocks")
		}
		buf, err := r.ReadAt(blk.addr, int(blk.size))
		if err != nil {
			return nil, err
		}
		if len(buf) < 8 || string(buf[:4]) != "OCHK" {
			return nil, errors.New("bad continuation block signature")
		}
		if !binary.VerifyChecksum(buf) {
			return nil, errors.New("continuation block checksum mismatch")
		}
		if err := rd.messagesV2(buf[4:len(buf)-4], flags); err != nil {
			return nil, err
		}
	}
}

func (rd *reader) messagesV2(buf []byte, hflags uint8) error {
	headLen := 4
	if hflags&0x04 != 0 {
		headLen = 6
	}
	d := rd.r.Decode(buf)
	// Fewer bytes than a message header left at the end form a gap.
	for d.Len() >= headLen {
		t := message.Type(d.U8())
		n := int(d.U16())
		flags := d.U8()
		if hflags&0x04 != 0 {
			d.U16() // creation order
		}
		data := d.Bytes(n)
		if err := d.Err(); err != nil {
			return err
		}
		if err := rd.add(t, flags, data); err != nil {
			return err
		}
	}
	return nil
}
