package odim

import (
	"fmt"
	"math"
	"reflect"

	"gonum.org/v1/gonum/mat"

	"github.com/robert-malhotra/go-odim/container"
)

// Numeric lists the element types a sample matrix can be stored in.
type Numeric interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// Matrix is a row-major grid of raw samples. For polar data a row is a ray
// and a column a range bin.
type Matrix[T Numeric] struct {
	Rows int
	Cols int
	Data []T
}

// NewMatrix returns a zero filled rows x cols matrix.
func NewMatrix[T Numeric](rows, cols int) *Matrix[T] {
	return &Matrix[T]{Rows: rows, Cols: cols, Data: make([]T, rows*cols)}
}

// At returns the sample at row r, column c.
func (m *Matrix[T]) At(r, c int) T {
	return m.Data[r*m.Cols+c]
}

// Set sets the sample at row r, column c.
func (m *Matrix[T]) Set(r, c int, v T) {
	m.Data[r*m.Cols+c] = v
}

// HasMatrix reports whether the group holds a sample matrix.
func (d *Data) HasMatrix() bool {
	c := d.node.Child(matrixName)
	return c != nil && c.IsDataset()
}

func (d *Data) matrix() (*container.Dataset, error) {
	ds, err := d.node.Dataset(matrixName)
	if err != nil {
		return nil, formatErr(ErrMissingDataset, d.Path(), matrixName, err)
	}
	return ds, nil
}

// ElemType returns the stored element type of the sample matrix.
func (d *Data) ElemType() (container.ElemType, error) {
	ds, err := d.matrix()
	if err != nil {
		return container.Invalid, err
	}
	return ds.ElemType(), nil
}

// Dims returns the number of rows and columns of the sample matrix.
func (d *Data) Dims() (rows, cols int, err error) {
	ds, err := d.matrix()
	if err != nil {
		return 0, 0, err
	}
	return ds.Height(), ds.Width(), nil
}

// ReadRaw copies the samples into buf, a slice of the stored element type
// with exactly rows*cols elements.
func (d *Data) ReadRaw(buf interface{}) error {
	ds, err := d.matrix()
	if err != nil {
		return err
	}
	return ds.Read(buf)
}

// ReadData reads the sample matrix of d. T must be the stored element type.
func ReadData[T Numeric](d *Data) (*Matrix[T], error) {
	ds, err := d.matrix()
	if err != nil {
		return nil, err
	}
	m := NewMatrix[T](ds.Height(), ds.Width())
	if err := ds.Read(m.Data); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteData stores m as the sample matrix of d, replacing any previous one.
func WriteData[T Numeric](d *Data, m *Matrix[T]) error {
	if m.Rows <= 0 || m.Cols <= 0 || len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: %dx%d matrix with %d samples", ErrDimensionMismatch, m.Rows, m.Cols, len(m.Data))
	}
	return d.writeRaw(container.ElemTypeOf(m.Data), m.Rows, m.Cols, m.Data)
}

func (d *Data) writeRaw(elem container.ElemType, rows, cols int, buf interface{}) error {
	ds, err := d.node.CreateDataset(matrixName, elem, rows, cols)
	if err != nil {
		return fmt.Errorf("creating %s: %w", joinName(d.Path(), matrixName), err)
	}
	if err := ds.Write(buf); err != nil {
		return err
	}
	if err := ds.Node().SetAttr("CLASS", "IMAGE"); err != nil {
		return err
	}
	return ds.Node().SetAttr("IMAGE_VERSION", "1.2")
}

// ReadTranslatedData returns the physical values raw*gain+offset. Samples
// equal to what/nodata become the nodata sentinel and samples equal to
// what/undetect the undetect sentinel.
func (d *Data) ReadTranslatedData(opts ...TranslateOption) (*mat.Dense, error) {
	s := newSentinels(opts)

	ds, err := d.matrix()
	if err != nil {
		return nil, err
	}
	buf := reflect.MakeSlice(reflect.SliceOf(ds.ElemType().GoType()), ds.Len(), ds.Len()).Interface()
	if err := ds.Read(buf); err != nil {
		return nil, err
	}
	vals, err := toFloats(buf)
	if err != nil {
		return nil, err
	}

	gain, err := d.Gain()
	if err != nil {
		return nil, err
	}
	offset, err := d.Offset()
	if err != nil {
		return nil, err
	}
	noData, hasNoData, err := d.code("nodata")
	if err != nil {
		return nil, err
	}
	undetect, hasUndetect, err := d.code("undetect")
	if err != nil {
		return nil, err
	}

	for i, raw := range vals {
		switch {
		case hasNoData && raw == noData:
			vals[i] = s.noData
		case hasUndetect && raw == undetect:
			vals[i] = s.undetect
		default:
			vals[i] = raw*gain + offset
		}
	}
	return mat.NewDense(ds.Height(), ds.Width(), vals), nil
}

// WriteAndTranslate stores physical values as raw samples of type target,
// round((v-offset)/gain) clamped to the range of target, and records gain
// and offset in what. Values equal to the nodata or undetect sentinel are
// stored as the exact what/nodata or what/undetect code, which must then be
// set. For integer targets a code at either end of the range is excluded
// from clamping, so an out of range value saturates to the nearest valid
// sample instead of reading back as nodata or undetect.
func (d *Data) WriteAndTranslate(m mat.Matrix, offset, gain float64, target container.ElemType, opts ...TranslateOption) error {
	s := newSentinels(opts)

	if gain == 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
		return fmt.Errorf("%w: gain %v", ErrInvalidArgument, gain)
	}
	if !target.Valid() {
		return fmt.Errorf("%w: target type %v", ErrUnsupported, target)
	}

	noData, hasNoData, err := d.code("nodata")
	if err != nil {
		return err
	}
	undetect, hasUndetect, err := d.code("undetect")
	if err != nil {
		return err
	}

	lo, hi := elemRange(target)
	if !target.IsFloat() {
		var codes []float64
		if hasNoData {
			codes = append(codes, noData)
		}
		if hasUndetect {
			codes = append(codes, undetect)
		}
		lo, hi = clampRange(lo, hi, codes)
	}
	rows, cols := m.Dims()
	vals := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := m.At(r, c)
			switch {
			case sameValue(v, s.noData):
				if !hasNoData {
					return fmt.Errorf("%w: nodata sentinel at (%d,%d) but %s has no nodata code", ErrInvalidArgument, r, c, d.What().Path())
				}
				vals = append(vals, noData)
			case sameValue(v, s.undetect):
				if !hasUndetect {
					return fmt.Errorf("%w: undetect sentinel at (%d,%d) but %s has no undetect code", ErrInvalidArgument, r, c, d.What().Path())
				}
				vals = append(vals, undetect)
			case math.IsNaN(v):
				return fmt.Errorf("%w: NaN at (%d,%d) is not a sentinel", ErrInvalidArgument, r, c)
			default:
				raw := (v - offset) / gain
				if !target.IsFloat() {
					raw = math.Round(raw)
				}
				vals = append(vals, math.Max(lo, math.Min(hi, raw)))
			}
		}
	}

	if err := d.writeRaw(target, rows, cols, fromFloats(target, vals)); err != nil {
		return err
	}
	if err := d.SetGain(gain); err != nil {
		return err
	}
	return d.SetOffset(offset)
}

// clampRange narrows [lo, hi] until neither end is one of codes.
func clampRange(lo, hi float64, codes []float64) (float64, float64) {
	for moved := true; moved && lo < hi; {
		moved = false
		for _, c := range codes {
			switch c {
			case lo:
				lo, moved = lo+1, true
			case hi:
				hi, moved = hi-1, true
			}
		}
	}
	return lo, hi
}

// code returns the raw code stored in what/<name>, if any.
func (d *Data) code(name string) (float64, bool, error) {
	if !d.What().Has(name) {
		return 0, false, nil
	}
	v, err := d.What().GetDouble(name)
	return v, err == nil, err
}

// elemRange returns the representable range of t as float64 values that
// convert back to t without overflow.
func elemRange(t container.ElemType) (float64, float64) {
	switch t {
	case container.Int8:
		return math.MinInt8, math.MaxInt8
	case container.Uint8:
		return 0, math.MaxUint8
	case container.Int16:
		return math.MinInt16, math.MaxInt16
	case container.Uint16:
		return 0, math.MaxUint16
	case container.Int32:
		return math.MinInt32, math.MaxInt32
	case container.Uint32:
		return 0, math.MaxUint32
	case container.Int64:
		return math.MinInt64, math.Nextafter(math.MaxInt64, 0)
	case container.Uint64:
		return 0, math.Nextafter(math.MaxUint64, 0)
	case container.Float32:
		return -math.MaxFloat32, math.MaxFloat32
	}
	return math.Inf(-1), math.Inf(1)
}

func toFloats(buf interface{}) ([]float64, error) {
	switch s := buf.(type) {
	case []int8:
		return floatsOf(s), nil
	case []uint8:
		return floatsOf(s), nil
	case []int16:
		return floatsOf(s), nil
	case []uint16:
		return floatsOf(s), nil
	case []int32:
		return floatsOf(s), nil
	case []uint32:
		return floatsOf(s), nil
	case []int64:
		return floatsOf(s), nil
	case []uint64:
		return floatsOf(s), nil
	case []float32:
		return floatsOf(s), nil
	case []float64:
		return floatsOf(s), nil
	}
	return nil, fmt.Errorf("%w: samples of type %T", ErrUnsupported, buf)
}

func floatsOf[T Numeric](s []T) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

func fromFloats(t container.ElemType, vals []float64) interface{} {
	switch t {
	case container.Int8:
		return convertFloats[int8](vals)
	case container.Uint8:
		return convertFloats[uint8](vals)
	case container.Int16:
		return convertFloats[int16](vals)
	case container.Uint16:
		return convertFloats[uint16](vals)
	case container.Int32:
		return convertFloats[int32](vals)
	case container.Uint32:
		return convertFloats[uint32](vals)
	case container.Int64:
		return convertFloats[int64](vals)
	case container.Uint64:
		return convertFloats[uint64](vals)
	case container.Float32:
		return convertFloats[float32](vals)
	}
	return vals
}

func convertFloats[T Numeric](vals []float64) []T {
	out := make([]T, len(vals))
	for i, v := range vals {
		out[i] = T(v)
	}
	return out
}
