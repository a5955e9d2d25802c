package object

import (
	"fmt"

	"github.com/robert-malhotra/go-odim/internal/binary"
	"github.com/robert-malhotra/go-odim/internal/message"
)

// maxMessage is the largest message body a header message can carry.
const maxMessage = 0xffff

// Encode returns a version 2 object header holding msgs in one chunk. The
// chunk size field is sized to fit and no times are stored.
func Encode(msgs []message.Encoder, sizes binary.Sizes) ([]byte, error) {
	body := binary.NewEncoder(sizes)
	for _, m := range msgs {
		e := binary.NewEncoder(sizes)
		m.Encode(e)
		if e.Len() > maxMessage {
			return nil, fmt.Errorf("message %#x of %d bytes does not fit a header", uint16(m.Type()), e.Len())
		}
		body.U8(uint8(m.Type()))
		body.U16(uint16(e.Len()))
		body.U8(0)
		body.Bytes(e.Data())
	}

	flags, width := uint8(0), 1
	switch n := body.Len(); {
	case n > 0xffff:
		flags, width = 2, 4
	case n > 0xff:
		flags, width = 1, 2
	}

	e := binary.NewEncoder(sizes)
	e.String("OHDR")
	e.U8(2)
	e.U8(flags)
	e.Uint(uint64(body.Len()), width)
	e.Bytes(body.Data())
	e.Checksum(0)
	return e.Data(), nil
}
