package container

import (
	"fmt"
	"reflect"
)

// ElemType is the element type of a dataset.
type ElemType int

const (
	Invalid ElemType = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

var elemTypeNames = [...]string{
	Invalid: "invalid",
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
}

var elemGoTypes = [...]reflect.Type{
	Int8:    reflect.TypeOf(int8(0)),
	Uint8:   reflect.TypeOf(uint8(0)),
	Int16:   reflect.TypeOf(int16(0)),
	Uint16:  reflect.TypeOf(uint16(0)),
	Int32:   reflect.TypeOf(int32(0)),
	Uint32:  reflect.TypeOf(uint32(0)),
	Int64:   reflect.TypeOf(int64(0)),
	Uint64:  reflect.TypeOf(uint64(0)),
	Float32: reflect.TypeOf(float32(0)),
	Float64: reflect.TypeOf(float64(0)),
}

func (t ElemType) String() string {
	if t < 0 || int(t) >= len(elemTypeNames) {
		return fmt.Sprintf("ElemType(%d)", int(t))
	}
	return elemTypeNames[t]
}

// Valid reports whether t names a storable element type.
func (t ElemType) Valid() bool {
	return t > Invalid && int(t) < len(elemTypeNames)
}

// Size returns the size of one element in bytes, or 0 for an invalid type.
func (t ElemType) Size() int {
	if !t.Valid() {
		return 0
	}
	return int(elemGoTypes[t].Size())
}

// IsFloat reports whether t is a floating point type.
func (t ElemType) IsFloat() bool {
	return t == Float32 || t == Float64
}

// IsSigned reports whether t is a signed integer or floating point type.
func (t ElemType) IsSigned() bool {
	switch t {
	case Int8, Int16, Int32, Int64, Float32, Float64:
		return true
	}
	return false
}

// GoType returns the Go type of one element.
func (t ElemType) GoType() reflect.Type {
	if !t.Valid() {
		return nil
	}
	return elemGoTypes[t]
}

// ParseElemType parses the name returned by ElemType.String.
func ParseElemType(s string) (ElemType, error) {
	for t := Int8; t <= Float64; t++ {
		if elemTypeNames[t] == s {
			return t, nil
		}
	}
	return Invalid, fmt.Errorf("%w: element type %q", ErrUnsupportedType, s)
}

// ElemTypeOf returns the element type of a value or slice, such as Uint8 for
// both uint8 and []uint8. It returns Invalid for anything else.
func ElemTypeOf(v interface{}) ElemType {
	t := reflect.TypeOf(v)
	if t == nil {
		return Invalid
	}
	if t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return elemTypeOfKind(t.Kind())
}

func elemTypeOfKind(k reflect.Kind) ElemType {
	switch k {
	case reflect.Int8:
		return Int8
	case reflect.Uint8:
		return Uint8
	case reflect.Int16:
		return Int16
	case reflect.Uint16:
		return Uint16
	case reflect.Int32:
		return Int32
	case reflect.Uint32:
		return Uint32
	case reflect.Int64:
		return Int64
	case reflect.Uint64:
		return Uint64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	}
	return Invalid
}
