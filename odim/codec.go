package odim

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// A codec converts between a Go value and the attribute value stored for it.
//
// Scalars are stored natively, except bool which is stored as int8 0/1 and
// int which is stored as int32. Sequences are stored as one comma separated
// string, pairs as "first:second" items, and SourceInfo as its KEY:value
// string. Decoders are lenient: they accept any stored numeric width that
// fits, numeric strings, and native arrays in place of sequence strings.
type codec struct {
	encode func(v interface{}) (interface{}, error)
	decode func(raw interface{}) (interface{}, error)
}

var codecs = make(map[reflect.Type]codec)

func register[T any](enc func(T) (interface{}, error), dec func(interface{}) (T, error)) {
	codecs[typeOf[T]()] = codec{
		encode: func(v interface{}) (interface{}, error) { return enc(v.(T)) },
		decode: func(raw interface{}) (interface{}, error) { return dec(raw) },
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func codecFor[T any]() (codec, error) {
	c, ok := codecs[typeOf[T]()]
	if !ok {
		return codec{}, fmt.Errorf("%w: no attribute codec for %v", ErrUnsupported, typeOf[T]())
	}
	return c, nil
}

func init() {
	register(encodeBool, decodeBool)
	register(encodeInt, decodeInteger[int])
	register(native[int8], decodeInteger[int8])
	register(native[uint8], decodeInteger[uint8])
	register(native[int16], decodeInteger[int16])
	register(native[uint16], decodeInteger[uint16])
	register(native[int32], decodeInteger[int32])
	register(native[uint32], decodeInteger[uint32])
	register(native[int64], decodeInteger[int64])
	register(native[uint64], decodeInteger[uint64])
	register(native[float32], cast.ToFloat32E)
	register(native[float64], cast.ToFloat64E)
	register(native[string], decodeString)

	registerList(func(v bool) (string, error) {
		if v {
			return "1", nil
		}
		return "0", nil
	}, decodeBool)
	registerList(func(v int) (string, error) {
		if _, err := encodeInt(v); err != nil {
			return "", err
		}
		return strconv.Itoa(v), nil
	}, decodeInteger[int])
	registerList(func(v int64) (string, error) { return strconv.FormatInt(v, 10), nil }, decodeInteger[int64])
	registerList(func(v float64) (string, error) { return formatFloat(v), nil }, cast.ToFloat64E)
	registerList(func(v string) (string, error) {
		if strings.Contains(v, listSep) {
			return "", fmt.Errorf("%w: sequence element %q contains %q", ErrInvalidArgument, v, listSep)
		}
		return v, nil
	}, decodeString)

	registerPairs(
		func(p FloatPair) (float64, float64) { return p.First, p.Second },
		func(a, b float64) FloatPair { return FloatPair{First: a, Second: b} })
	registerPairs(
		func(p AZAngles) (float64, float64) { return p.Start, p.Stop },
		func(a, b float64) AZAngles { return AZAngles{Start: a, Stop: b} })
	registerPairs(
		func(p AZTimes) (float64, float64) { return p.Start, p.Stop },
		func(a, b float64) AZTimes { return AZTimes{Start: a, Stop: b} })

	register(func(s SourceInfo) (interface{}, error) { return s.String(), nil },
		func(raw interface{}) (SourceInfo, error) {
			str, ok := raw.(string)
			if !ok {
				return SourceInfo{}, fmt.Errorf("source stored as %T", raw)
			}
			return ParseSourceInfo(str)
		})
}

func native[T any](v T) (interface{}, error) {
	return v, nil
}

func encodeBool(v bool) (interface{}, error) {
	if v {
		return int8(1), nil
	}
	return int8(0), nil
}

func decodeBool(raw interface{}) (bool, error) {
	if isInteger(raw) {
		return reflect.ValueOf(raw).Convert(typeOf[int64]()).Int() != 0, nil
	}
	if s, ok := raw.(string); ok {
		return cast.ToBoolE(strings.TrimSpace(s))
	}
	return false, fmt.Errorf("cannot read %T as bool", raw)
}

// encodeInt stores int as int32 so it does not depend on the platform word size.
func encodeInt(v int) (interface{}, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d does not fit a 32-bit int, use a long", ErrInvalidArgument, v)
	}
	return int32(v), nil
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// decodeInteger reads raw as T, failing instead of truncating when the value
// does not fit. The 32-bit int accessor is limited to the int32 range.
func decodeInteger[T integer](raw interface{}) (T, error) {
	var zero T
	unsigned := zero-1 > zero
	limit32 := typeOf[T]().Kind() == reflect.Int

	if f, ok := asFloat(raw); ok {
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return zero, fmt.Errorf("%v is not an integer", raw)
		}
		if f >= -(1<<63) && f < 1<<63 {
			raw = int64(f)
		} else if f >= 0 && f < 1<<64 {
			raw = uint64(f)
		} else {
			return zero, fmt.Errorf("%v is out of range", raw)
		}
	}

	if u, ok := raw.(uint64); ok && u > math.MaxInt64 {
		t := T(u)
		if !unsigned || uint64(t) != u {
			return zero, fmt.Errorf("%d overflows %v", u, typeOf[T]())
		}
		return t, nil
	}

	var x int64
	var err error
	if s, ok := raw.(string); ok {
		x, err = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	} else {
		x, err = cast.ToInt64E(raw)
	}
	if err != nil {
		return zero, err
	}

	t := T(x)
	if int64(t) != x || (x < 0 && unsigned) || (limit32 && (x < math.MinInt32 || x > math.MaxInt32)) {
		return zero, fmt.Errorf("%d overflows %v", x, typeOf[T]())
	}
	return t, nil
}

func decodeString(raw interface{}) (string, error) {
	if s, ok := raw.(string); ok {
		return s, nil
	}
	if reflect.ValueOf(raw).Kind() == reflect.Slice {
		return "", fmt.Errorf("cannot read %T as string", raw)
	}
	return cast.ToStringE(raw)
}

func isInteger(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func asFloat(v interface{}) (float64, bool) {
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	return 0, false
}

// registerList registers the codec of []T. Elements are written with enc
// and read, from the split string or from a native array, with dec.
func registerList[T any](enc func(T) (string, error), dec func(interface{}) (T, error)) {
	register(func(vs []T) (interface{}, error) {
		parts := make([]string, len(vs))
		for i, v := range vs {
			s, err := enc(v)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		joined := strings.Join(parts, listSep)
		// A blank string reads back as the empty sequence.
		if len(vs) > 0 && strings.TrimSpace(joined) == "" {
			return nil, fmt.Errorf("%w: sequence %q would read back as empty", ErrInvalidArgument, vs)
		}
		return joined, nil
	}, func(raw interface{}) ([]T, error) {
		items := listItems(raw)
		out := make([]T, 0, len(items))
		for i, item := range items {
			v, err := dec(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	})
}

// listItems returns the elements of a stored sequence: the items of a comma
// separated string, the elements of a native array, or a lone scalar.
func listItems(raw interface{}) []interface{} {
	if s, ok := raw.(string); ok {
		parts := splitList(s)
		items := make([]interface{}, len(parts))
		for i, p := range parts {
			items[i] = p
		}
		return items
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return []interface{}{raw}
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

func registerPairs[P any](split func(P) (float64, float64), join func(a, b float64) P) {
	register(func(ps []P) (interface{}, error) {
		return formatPairs(ps, split), nil
	}, func(raw interface{}) ([]P, error) {
		if s, ok := raw.(string); ok {
			return parsePairs(s, join)
		}
		items := listItems(raw)
		vals := make([]float64, len(items))
		for i, item := range items {
			v, err := cast.ToFloat64E(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			vals[i] = v
		}
		return pairsFromFlat(vals, join)
	})
}
