package odim

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/robert-malhotra/go-odim/container"
)

func newData(t *testing.T) *Data {
	t.Helper()
	ds, err := newGeneric(t).CreateDataset()
	require.NoError(t, err)
	d, err := ds.CreateData("DBZH")
	require.NoError(t, err)
	return d
}

func TestSentinelRoundTrip(t *testing.T) {
	d := newData(t)
	require.NoError(t, d.SetNoData(0))
	require.NoError(t, d.SetUndetect(255))

	in := mat.NewDense(2, 3, []float64{
		math.NaN(), math.Inf(-1), 10,
		20, 200, 5,
	})
	require.NoError(t, d.WriteAndTranslate(in, 0, 1, container.Uint8))

	raw, err := ReadData[uint8](d)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255, 10, 20, 200, 5}, raw.Data)

	out, err := d.ReadTranslatedData()
	require.NoError(t, err)
	if diff := cmp.Diff(in.RawMatrix().Data, out.RawMatrix().Data, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("translated mismatch (-want +got):\n%s", diff)
	}

	gain, err := d.Gain()
	require.NoError(t, err)
	assert.Equal(t, 1.0, gain)
}

func TestTranslateScaling(t *testing.T) {
	d := newData(t)
	require.NoError(t, d.SetNoData(255))
	require.NoError(t, d.SetUndetect(0))

	in := mat.NewDense(1, 5, []float64{-31.5, 0, 12.26, 1000, -1000})
	require.NoError(t, d.WriteAndTranslate(in, -32, 0.5, container.Uint8))

	raw, err := ReadData[uint8](d)
	require.NoError(t, err)
	// Clamping stops short of the undetect code 0 and the nodata code 255.
	assert.Equal(t, []uint8{1, 64, 89, 254, 1}, raw.Data)

	out, err := d.ReadTranslatedData(WithNoDataValue(-9999), WithUndetectValue(-8888))
	require.NoError(t, err)
	assert.Equal(t, []float64{-31.5, 0, 12.5, 95, -31.5}, out.RawMatrix().Data)

	offset, err := d.Offset()
	require.NoError(t, err)
	assert.Equal(t, -32.0, offset)
}

func TestTranslateClampSkipsSentinelCodes(t *testing.T) {
	d := newData(t)
	require.NoError(t, d.SetNoData(0))
	require.NoError(t, d.SetUndetect(255))

	in := mat.NewDense(1, 5, []float64{math.NaN(), math.Inf(-1), 10, 300, -5})
	require.NoError(t, d.WriteAndTranslate(in, 0, 1, container.Uint8))

	raw, err := ReadData[uint8](d)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255, 10, 254, 1}, raw.Data)

	// Both codes at the low end push the lower bound past each of them.
	d = newData(t)
	require.NoError(t, d.SetNoData(-128))
	require.NoError(t, d.SetUndetect(-127))
	in = mat.NewDense(1, 2, []float64{-1000, 1000})
	require.NoError(t, d.WriteAndTranslate(in, 0, 1, container.Int8))
	clamped, err := ReadData[int8](d)
	require.NoError(t, err)
	assert.Equal(t, []int8{-126, 127}, clamped.Data)
}

func TestTranslateFloatTarget(t *testing.T) {
	d := newData(t)
	require.NoError(t, d.SetNoData(-9999))

	in := mat.NewDense(1, 3, []float64{1.25, math.NaN(), -3.75})
	require.NoError(t, d.WriteAndTranslate(in, 0, 1, container.Float32))

	raw, err := ReadData[float32](d)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.25, -9999, -3.75}, raw.Data)
}

func TestTranslateErrors(t *testing.T) {
	d := newData(t)
	in := mat.NewDense(1, 2, []float64{1, 2})

	assert.ErrorIs(t, d.WriteAndTranslate(in, 0, 0, container.Uint8), ErrInvalidArgument)
	assert.ErrorIs(t, d.WriteAndTranslate(in, 0, 1, container.Invalid), ErrUnsupported)

	withNaN := mat.NewDense(1, 2, []float64{1, math.NaN()})
	assert.ErrorIs(t, d.WriteAndTranslate(withNaN, 0, 1, container.Uint8), ErrInvalidArgument)

	_, err := d.ReadTranslatedData()
	assert.ErrorIs(t, err, ErrMissingDataset)
}

func TestMatrixRoundTripOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.h5")
	obj, err := Create(path, KindVP, testOptions()...)
	require.NoError(t, err)
	g := obj.(*Generic)

	ds, err := g.CreateDataset()
	require.NoError(t, err)
	d, err := ds.CreateData("VRADH")
	require.NoError(t, err)

	m := NewMatrix[int16](3, 4)
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, int16(r*100-c))
		}
	}
	require.NoError(t, WriteData(d, m))
	require.NoError(t, obj.Close())

	obj, err = Open(path, testOptions()...)
	require.NoError(t, err)
	defer obj.Close()

	ds, err = obj.DatasetAt(0)
	require.NoError(t, err)
	d, err = ds.DataAt(0)
	require.NoError(t, err)

	elem, err := d.ElemType()
	require.NoError(t, err)
	assert.Equal(t, container.Int16, elem)

	rows, cols, err := d.Dims()
	require.NoError(t, err)
	assert.Equal(t, [2]int{3, 4}, [2]int{rows, cols})

	got, err := ReadData[int16](d)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	assert.Equal(t, int16(199), got.At(2, 1))

	raw, ok := d.node.Child(matrixName).Attr("CLASS")
	require.True(t, ok)
	assert.Equal(t, "IMAGE", raw)
	raw, ok = d.node.Child(matrixName).Attr("IMAGE_VERSION")
	require.True(t, ok)
	assert.Equal(t, "1.2", raw)

	_, err = ReadData[uint8](d)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.ErrorIs(t, d.ReadRaw(make([]int16, 5)), ErrDimensionMismatch)
}

func TestWriteDataShape(t *testing.T) {
	d := newData(t)
	bad := &Matrix[uint8]{Rows: 2, Cols: 2, Data: []uint8{1, 2, 3}}
	assert.ErrorIs(t, WriteData(d, bad), ErrDimensionMismatch)

	require.NoError(t, WriteData(d, NewMatrix[uint8](2, 2)))
	require.NoError(t, WriteData(d, NewMatrix[float64](1, 3)))
	elem, err := d.ElemType()
	require.NoError(t, err)
	assert.Equal(t, container.Float64, elem)
}
