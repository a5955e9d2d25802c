package container

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.h5"), ReadOnly, WithLogger(quietLogger()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageIO)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "open", se.Op)
}

func TestCreateUnwritableLocation(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "no", "such", "dir", "f.h5"))
	assert.ErrorIs(t, err, ErrStorageIO)

	_, err = Create(t.TempDir())
	assert.ErrorIs(t, err, ErrStorageIO)
}

func TestCreateDefersWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.h5")
	f, err := Create(path, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file must not exist before flush")

	require.NoError(t, f.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDiscardWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discarded.h5")
	f, err := Create(path, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, f.Root().SetAttr("x", int32(1)))

	require.NoError(t, f.Discard())
	require.NoError(t, f.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "discarded file must not be written")
	assert.ErrorIs(t, f.Flush(), ErrClosed)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.h5")
	f, err := Create(path, WithLogger(quietLogger()))
	require.NoError(t, err)

	root := f.Root()
	require.NoError(t, root.SetAttr("Conventions", "ODIM_H5/V2_1"))

	what, err := root.EnsureChild("what")
	require.NoError(t, err)
	require.NoError(t, what.SetAttr("object", "PVOL"))
	require.NoError(t, what.SetAttr("count", 3))
	require.NoError(t, what.SetAttr("flag", int8(1)))
	require.NoError(t, what.SetAttr("gain", 0.5))
	require.NoError(t, what.SetAttr("angles", []float64{0.5, 1.5}))
	require.NoError(t, what.SetAttr("names", []string{"a", "b"}))

	ds1, err := root.EnsureChild("dataset1")
	require.NoError(t, err)
	data1, err := ds1.EnsureChild("data1")
	require.NoError(t, err)
	grid, err := data1.CreateDataset("data", Uint8, 2, 3)
	require.NoError(t, err)
	require.NoError(t, grid.Write([]uint8{1, 2, 3, 4, 5, 6}))
	require.NoError(t, grid.Node().SetAttr("CLASS", "IMAGE"))

	require.NoError(t, f.Close())

	g, err := Open(path, ReadOnly, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer g.Close()

	v, ok := g.Root().Attr("Conventions")
	require.True(t, ok)
	assert.Equal(t, "ODIM_H5/V2_1", v)
	assert.Equal(t, []string{"what", "dataset1"}, g.Root().Children())

	gw := g.Root().Child("what")
	require.NotNil(t, gw)
	if diff := cmp.Diff([]string{"object", "count", "flag", "gain", "angles", "names"}, gw.AttrNames()); diff != "" {
		t.Errorf("attribute names mismatch (-want +got):\n%s", diff)
	}
	count, _ := gw.Attr("count")
	assert.Equal(t, int64(3), count)
	flag, _ := gw.Attr("flag")
	assert.Equal(t, int8(1), flag)
	angles, _ := gw.Attr("angles")
	assert.Equal(t, []float64{0.5, 1.5}, angles)
	names, _ := gw.Attr("names")
	assert.Equal(t, []string{"a", "b"}, names)

	gd, err := g.Root().Child("dataset1").Child("data1").Dataset("data")
	require.NoError(t, err)
	assert.Equal(t, Uint8, gd.ElemType())
	assert.Equal(t, 2, gd.Height())
	assert.Equal(t, 3, gd.Width())

	buf := make([]uint8, 6)
	require.NoError(t, gd.Read(buf))
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, buf)

	class, ok := gd.Node().Attr("CLASS")
	require.True(t, ok)
	assert.Equal(t, "IMAGE", class)
}

func TestReadOnlyRejectsMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.h5")
	f := New(WithLogger(quietLogger()))
	_, err := f.Root().EnsureChild("what")
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("data", Int16, 1, 1)
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	g, err := Open(path, ReadOnly, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer g.Close()

	assert.ErrorIs(t, g.Root().SetAttr("x", "y"), ErrReadOnly)
	_, err = g.Root().EnsureChild("where")
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, g.Root().RemoveChild("what"), ErrReadOnly)
	assert.ErrorIs(t, g.Flush(), ErrReadOnly)

	ds, err := g.Root().Dataset("data")
	require.NoError(t, err)
	assert.ErrorIs(t, ds.Write([]int16{1}), ErrReadOnly)

	// Existing children are still returned.
	_, err = g.Root().EnsureChild("what")
	assert.NoError(t, err)
}

func TestReadWriteModifiesInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rw.h5")
	f := New(WithLogger(quietLogger()))
	grid, err := f.Root().CreateDataset("data", Float32, 2, 2)
	require.NoError(t, err)
	require.NoError(t, grid.Write([]float32{1, 2, 3, 4}))
	for _, name := range []string{"dataset1", "dataset2", "dataset3"} {
		_, err := f.Root().EnsureChild(name)
		require.NoError(t, err)
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	g, err := Open(path, ReadWrite, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, g.Root().RemoveChild("dataset2"))
	require.NoError(t, g.Root().SetAttr("Conventions", "ODIM_H5/V2_0"))
	require.NoError(t, g.Close())

	h, err := Open(path, ReadOnly, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, []string{"data", "dataset1", "dataset3"}, h.Root().Children())
	conv, _ := h.Root().Attr("Conventions")
	assert.Equal(t, "ODIM_H5/V2_0", conv)

	ds, err := h.Root().Dataset("data")
	require.NoError(t, err)
	buf := make([]float32, 4)
	require.NoError(t, ds.Read(buf))
	assert.Equal(t, []float32{1, 2, 3, 4}, buf)
}

func TestNodeChildren(t *testing.T) {
	f := New(WithLogger(quietLogger()))
	root := f.Root()

	a, err := root.EnsureChild("a")
	require.NoError(t, err)
	again, err := root.EnsureChild("a")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, "/a", a.Path())
	assert.Same(t, root, a.Parent())

	b, err := a.EnsureChild("b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", b.Path())
	assert.True(t, root.HasChild("a"))
	assert.Nil(t, root.Child("b"))

	for _, bad := range []string{"", ".", "..", "x/y"} {
		_, err := root.EnsureChild(bad)
		assert.Error(t, err, "name %q", bad)
	}

	err = root.RemoveChild("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, root.RemoveChild("a"))
	assert.False(t, root.HasChild("a"))
	assert.Empty(t, root.Children())
}

func TestNodeAttributes(t *testing.T) {
	f := New(WithLogger(quietLogger()))
	n := f.Root()

	require.NoError(t, n.SetAttr("x", int32(1)))
	require.NoError(t, n.SetAttr("y", "text"))
	require.NoError(t, n.SetAttr("x", "now a string"))
	assert.Equal(t, []string{"x", "y"}, n.AttrNames())

	v, ok := n.Attr("x")
	assert.True(t, ok)
	assert.Equal(t, "now a string", v)

	src := []float64{1, 2}
	require.NoError(t, n.SetAttr("z", src))
	src[0] = 99
	z, _ := n.Attr("z")
	assert.Equal(t, []float64{1, 2}, z, "stored slices are copies")

	require.NoError(t, n.SetAttr("ints", []int{1, 2}))
	ints, _ := n.Attr("ints")
	assert.Equal(t, []int64{1, 2}, ints)

	for _, bad := range []interface{}{true, nil, []float64{}, []string{}, struct{}{}, map[string]int{}} {
		err := n.SetAttr("bad", bad)
		assert.ErrorIs(t, err, ErrUnsupportedType, "value %#v", bad)
	}

	require.NoError(t, n.RemoveAttr("y"))
	assert.False(t, n.HasAttr("y"))
	assert.ErrorIs(t, n.RemoveAttr("y"), ErrNotFound)
	assert.Equal(t, []string{"x", "z", "ints"}, n.AttrNames())
}

func TestDatasetContract(t *testing.T) {
	f := New(WithLogger(quietLogger()))
	root := f.Root()

	ds, err := root.CreateDataset("data", Int16, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, ds.Len())

	buf := make([]int16, 6)
	require.NoError(t, ds.Read(buf))
	assert.Equal(t, make([]int16, 6), buf, "new datasets are zero filled")

	assert.ErrorIs(t, ds.Read(make([]int32, 6)), ErrTypeMismatch)
	assert.ErrorIs(t, ds.Read(make([]int16, 5)), ErrDimensionMismatch)
	assert.ErrorIs(t, ds.Write([]uint8{1}), ErrTypeMismatch)
	assert.ErrorIs(t, ds.Write(make([]int16, 7)), ErrDimensionMismatch)
	assert.ErrorIs(t, ds.Read(42), ErrTypeMismatch)

	_, err = root.CreateDataset("bad", Invalid, 1, 1)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = root.CreateDataset("bad", Uint8, 0, 1)
	assert.Error(t, err)

	_, err = root.EnsureChild("data")
	assert.ErrorIs(t, err, ErrExists)
	_, err = ds.Node().EnsureChild("child")
	assert.Error(t, err)

	// Recreating replaces the dataset.
	ds2, err := root.CreateDataset("data", Float64, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, Float64, ds2.ElemType())
	assert.Equal(t, []string{"data"}, root.Children())

	_, err = root.Dataset("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = root.EnsureChild("group")
	require.NoError(t, err)
	_, err = root.Dataset("group")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = root.CreateDataset("group", Uint8, 1, 1)
	assert.ErrorIs(t, err, ErrExists)
}

func TestFailedFlushKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.h5")

	f := New(WithLogger(quietLogger()))
	require.NoError(t, f.Root().SetAttr("version", "first"))
	require.NoError(t, f.SaveAs(path))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// A string sequence with no elements cannot reach the writer through
	// SetAttr, so poison the tree directly.
	f.Root().attrs["broken"] = []string{}
	f.Root().order = append(f.Root().order, "broken")
	err = f.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageIO)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are removed")
}

func TestNewWithoutPath(t *testing.T) {
	f := New()
	assert.Equal(t, "", f.Path())
	assert.True(t, f.Modified())

	err := f.Flush()
	assert.ErrorIs(t, err, ErrStorageIO)
	require.NoError(t, f.Close())
	assert.ErrorIs(t, f.Flush(), ErrClosed)
	assert.True(t, errors.Is(f.SaveAs("x.h5"), ErrClosed))
}

func TestElemType(t *testing.T) {
	assert.Equal(t, "uint8", Uint8.String())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, 0, Invalid.Size())
	assert.True(t, Float32.IsFloat())
	assert.True(t, Int8.IsSigned())
	assert.False(t, Uint16.IsSigned())
	assert.Equal(t, Int32, ElemTypeOf([]int32{}))
	assert.Equal(t, Uint64, ElemTypeOf(uint64(1)))
	assert.Equal(t, Invalid, ElemTypeOf("x"))
	assert.Equal(t, Invalid, ElemTypeOf(nil))

	et, err := ParseElemType("int16")
	require.NoError(t, err)
	assert.Equal(t, Int16, et)
	_, err = ParseElemType("complex")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
