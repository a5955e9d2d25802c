// Package dtype maps HDF5 datatypes onto Go types and converts element
// bytes in both directions.
package dtype

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/robert-malhotra/go-odim/internal/message"
)

// VarLenResolver returns the bytes a variable-length element points at.
type VarLenResolver interface {
	Resolve(elem []byte) ([]byte, error)
}

var (
	intTypes   = map[uint32]reflect.Type{1: reflect.TypeOf(int8(0)), 2: reflect.TypeOf(int16(0)), 4: reflect.TypeOf(int32(0)), 8: reflect.TypeOf(int64(0))}
	uintTypes  = map[uint32]reflect.Type{1: reflect.TypeOf(uint8(0)), 2: reflect.TypeOf(uint16(0)), 4: reflect.TypeOf(uint32(0)), 8: reflect.TypeOf(uint64(0))}
	floatTypes = map[uint32]reflect.Type{4: reflect.TypeOf(float32(0)), 8: reflect.TypeOf(float64(0))}
	stringType = reflect.TypeOf("")
)

// GoType returns the Go element type for dt. Enums map to their base type.
func GoType(dt *message.Datatype) (reflect.Type, error) {
	var t reflect.Type
	switch dt.Class {
	case message.ClassFixedPoint:
		if dt.Signed {
			t = intTypes[dt.Size]
		} else {
			t = uintTypes[dt.Size]
		}
	case message.ClassFloatPoint:
		t = floatTypes[dt.Size]
	case message.ClassString:
		t = stringType
	case message.ClassVarLen:
		if dt.VarLenString {
			t = stringType
		}
	case message.ClassEnum:
		return GoType(dt.Base)
	}
	if t == nil {
		return nil, fmt.Errorf("%v datatype of %d bytes: %w", dt.Class, dt.Size, message.ErrUnsupported)
	}
	return t, nil
}

func order(dt *message.Datatype) binary.ByteOrder {
	if dt.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Decode converts n elements of raw data into dest, a pointer to a slice.
// Numbers convert to any numeric element type of dest; strings need a string
// slice. vl resolves variable-length strings and may be nil otherwise.
func Decode(dt *message.Datatype, raw []byte, n uint64, dest interface{}, vl VarLenResolver) error {
	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("destination must be a pointer to a slice, got %T", dest)
	}
	if dt.Class == message.ClassEnum {
		base := *dt.Base
		dt = &base
	}
	size := uint64(dt.Size)
	if size == 0 || uint64(len(raw)) < n*size {
		return fmt.Errorf("%d bytes for %d elements of %d bytes", len(raw), n, size)
	}

	src, err := GoType(dt)
	if err != nil {
		return err
	}
	slice := ptr.Elem()
	elem := slice.Type().Elem()

	// Same type in the same byte order: decode in one go.
	if elem == src && src.Kind() != reflect.String {
		out := reflect.MakeSlice(slice.Type(), int(n), int(n))
		if err := binary.Read(bytes.NewReader(raw[:n*size]), order(dt), out.Interface()); err != nil {
			return err
		}
		slice.Set(out)
		return nil
	}

	out := reflect.MakeSlice(slice.Type(), int(n), int(n))
	for i := uint64(0); i < n; i++ {
		b := raw[i*size : (i+1)*size]
		if err := set(out.Index(int(i)), dt, b, vl); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	slice.Set(out)
	return nil
}

func set(v reflect.Value, dt *message.Datatype, b []byte, vl VarLenResolver) error {
	switch dt.Class {
	case message.ClassString:
		if v.Kind() != reflect.String {
			return fmt.Errorf("cannot store a string in %v", v.Type())
		}
		v.SetString(fixedString(b, dt.Padding))
		return nil
	case message.ClassVarLen:
		if v.Kind() != reflect.String {
			return fmt.Errorf("cannot store a string in %v", v.Type())
		}
		if vl == nil {
			return fmt.Errorf("variable-length string without a heap: %w", message.ErrUnsupported)
		}
		s, err := vl.Resolve(b)
		if err != nil {
			return err
		}
		v.SetString(strings.TrimRight(string(s), "\x00"))
		return nil
	}

	var (
		i int64
		u uint64
		f float64
	)
	isFloat, isSigned := dt.Class == message.ClassFloatPoint, dt.Signed
	switch {
	case isFloat && dt.Size == 4:
		f = float64(math.Float32frombits(uint32(uintOf(b, dt.BigEndian))))
	case isFloat:
		f = math.Float64frombits(uintOf(b, dt.BigEndian))
	default:
		u = uintOf(b, dt.BigEndian)
		if isSigned {
			shift := 64 - 8*uint(len(b))
			i = int64(u<<shift) >> shift
		}
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch {
		case isFloat:
			v.SetInt(int64(f))
		case isSigned:
			v.SetInt(i)
		default:
			v.SetInt(int64(u))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch {
		case isFloat:
			v.SetUint(uint64(f))
		case isSigned:
			v.SetUint(uint64(i))
		default:
			v.SetUint(u)
		}
	case reflect.Float32, reflect.Float64:
		switch {
		case isFloat:
			v.SetFloat(f)
		case isSigned:
			v.SetFloat(float64(i))
		default:
			v.SetFloat(float64(u))
		}
	default:
		return fmt.Errorf("cannot store a number in %v", v.Type())
	}
	return nil
}

func uintOf(b []byte, bigEndian bool) uint64 {
	var u uint64
	if bigEndian {
		for _, c := range b {
			u = u<<8 | uint64(c)
		}
		return u
	}
	for i := len(b) - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return u
}

// fixedString trims a fixed-length string at its terminator or padding.
func fixedString(b []byte, padding uint8) string {
	switch padding {
	case message.PadSpace:
		return strings.TrimRight(string(b), " ")
	default:
		if i := bytes.IndexByte(b, 0); i >= 0 {
			return string(b[:i])
		}
		return string(b)
	}
}

// FromGoType returns the little-endian datatype for a numeric Go type.
func FromGoType(t reflect.Type) (*message.Datatype, error) {
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return message.NewFixedPoint(uint32(t.Size()), true), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return message.NewFixedPoint(uint32(t.Size()), false), nil
	case reflect.Float32, reflect.Float64:
		return message.NewFloatPoint(uint32(t.Size())), nil
	}
	return nil, fmt.Errorf("Go type %v: %w", t, message.ErrUnsupported)
}

// Encode returns the little-endian bytes of a numeric value or slice of
// numeric values. Platform-sized int and uint are not accepted so the
// stored width never depends on the writer's machine.
func Encode(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	t := rv.Type()
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	if _, err := FromGoType(t); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
