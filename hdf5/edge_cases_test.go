package hdf5

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// === ERROR PATH TESTS ===

// TestOpenInvalidHDF5Signature tests opening files with invalid HDF5 signatures.
func TestOpenInvalidHDF5Signature(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty file", []byte{}},
		{"random bytes", []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}},
		{"almost valid signature", []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, 'X'}},
		{"text file", []byte("This is not an HDF5 file")},
		{"binary garbage", bytes.Repeat([]byte{0xFF}, 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "invalid_hdf5_*.h5")
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(tmpfile.Name())

			if len(tt.content) > 0 {
				if _, err := tmpfile.Write(tt.content); err != nil {
					t.Fatal(err)
				}
			}
			tmpfile.Close()

			_, err = Open(tmpfile.Name())
			if err == nil {
				t.Error("expected error for invalid HDF5 file")
			}
		})
	}
}

// TestOpenTruncatedFile tests opening truncated HDF5 files.
func TestOpenTruncatedFile(t *testing.T) {
	// HDF5 signature only (8 bytes) - truncated before version
	signature := []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

	tests := []struct {
		name    string
		content []byte
	}{
		{"signature only", signature},
		{"signature plus 1 byte", append(signature, 0x02)},
		{"signature plus 4 bytes", append(signature, 0x02, 0x08, 0x08, 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "truncated_hdf5_*.h5")
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(tmpfile.Name())

			if _, err := tmpfile.Write(tt.content); err != nil {
				t.Fatal(err)
			}
			tmpfile.Close()

			_, err = Open(tmpfile.Name())
			if err == nil {
				t.Error("expected error for truncated HDF5 file")
			}
		})
	}
}

// TestOpenNonExistentFile tests opening a file that doesn't exist.
func TestOpenNonExistentFile(t *testing.T) {
	_, err := Open("/nonexistent/path/to/file.h5")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

// TestOpenDirectory tests trying to open a directory as an HDF5 file.
func TestOpenDirectory(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "hdf5_dir_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	_, err = Open(tmpdir)
	if err == nil {
		t.Error("expected error when opening directory as HDF5 file")
	}
}

// === EDGE CASE TESTS ===

// writeTestFile writes a small tree: a scalar, an image dataset under
// /dataset1/data1 and a few attributes on every level.
func writeTestFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.h5")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	scalar, err := w.WriteDataset([]int64{42}, nil, nil)
	if err != nil {
		t.Fatalf("WriteDataset(scalar) failed: %v", err)
	}
	data, err := w.WriteDataset([]uint8{1, 2, 3, 4, 5, 6}, []uint64{2, 3}, []Attr{
		{Name: "CLASS", Value: "IMAGE"},
		{Name: "IMAGE_VERSION", Value: "1.2"},
	})
	if err != nil {
		t.Fatalf("WriteDataset(data) failed: %v", err)
	}
	what, err := w.WriteGroup(nil, []Attr{
		{Name: "quantity", Value: "DBZH"},
		{Name: "gain", Value: 0.5},
		{Name: "offset", Value: -32.0},
	})
	if err != nil {
		t.Fatalf("WriteGroup(what) failed: %v", err)
	}
	data1, err := w.WriteGroup([]Link{{Name: "data", Address: data}, {Name: "what", Address: what}}, nil)
	if err != nil {
		t.Fatalf("WriteGroup(data1) failed: %v", err)
	}
	dataset1, err := w.WriteGroup([]Link{{Name: "data1", Address: data1}}, nil)
	if err != nil {
		t.Fatalf("WriteGroup(dataset1) failed: %v", err)
	}
	root, err := w.WriteGroup([]Link{
		{Name: "scalar", Address: scalar},
		{Name: "dataset1", Address: dataset1},
	}, []Attr{{Name: "Conventions", Value: "ODIM_H5/V2_1"}})
	if err != nil {
		t.Fatalf("WriteGroup(root) failed: %v", err)
	}
	if err := w.Finish(root); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	return path
}

// TestScalarDataset tests reading scalar (0-dimensional) datasets.
func TestScalarDataset(t *testing.T) {
	f, err := Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	ds, err := f.OpenDataset("scalar")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}

	if len(ds.Shape()) != 0 {
		t.Errorf("expected 0 dimensions for scalar, got %d", len(ds.Shape()))
	}
	if !ds.IsScalar() {
		t.Error("expected scalar dataset")
	}
	if ds.NumElements() != 1 {
		t.Errorf("expected 1 element for scalar, got %d", ds.NumElements())
	}

	var data []int64
	if err := ds.Read(&data); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(data) != 1 || data[0] != 42 {
		t.Errorf("expected scalar value 42, got %v", data)
	}
}

// TestDoubleClose tests that closing a file twice is safe.
func TestDoubleClose(t *testing.T) {
	f, err := Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}
}

// TestOperationsAfterClose tests that operations fail properly after close.
func TestOperationsAfterClose(t *testing.T) {
	f, err := Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	f.Close()

	if _, err := f.OpenDataset("scalar"); err != ErrClosed {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}
	if _, err := f.OpenGroup("dataset1"); err != ErrClosed {
		t.Errorf("expected ErrClosed for OpenGroup after close, got %v", err)
	}
}

// TestOpenNonExistentMembers tests opening objects that don't exist.
func TestOpenNonExistentMembers(t *testing.T) {
	f, err := Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	if _, err := f.OpenDataset("nonexistent_dataset"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.OpenGroup("dataset1/nonexistent_group"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.OpenGroup("scalar"); err != ErrNotGroup {
		t.Errorf("expected ErrNotGroup, got %v", err)
	}
	if _, err := f.OpenDataset("dataset1"); err != ErrNotDataset {
		t.Errorf("expected ErrNotDataset, got %v", err)
	}
}

// TestRootGroupPath tests that root group has correct path.
func TestRootGroupPath(t *testing.T) {
	f, err := Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	if f.Root().Path() != "/" {
		t.Errorf("expected root path '/', got %q", f.Root().Path())
	}
	if f.Root().Name() != "/" {
		t.Errorf("expected root name '/', got %q", f.Root().Name())
	}
}

// TestDeepPathAccess tests accessing nested objects via path.
func TestDeepPathAccess(t *testing.T) {
	f, err := Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	for _, p := range []string{"dataset1", "/dataset1", "dataset1/", "/dataset1/data1", "dataset1/data1/what"} {
		t.Run("group_"+p, func(t *testing.T) {
			if _, err := f.OpenGroup(p); err != nil {
				t.Errorf("OpenGroup(%q) failed: %v", p, err)
			}
		})
	}
	for _, p := range []string{"dataset1/data1/data", "/dataset1/data1/data"} {
		t.Run("dataset_"+p, func(t *testing.T) {
			ds, err := f.OpenDataset(p)
			if err != nil {
				t.Fatalf("OpenDataset(%q) failed: %v", p, err)
			}
			if ds.Path() != "/dataset1/data1/data" {
				t.Errorf("expected path /dataset1/data1/data, got %q", ds.Path())
			}
		})
	}
	for _, p := range []string{"", "../data", "scalar/child"} {
		t.Run("invalid_"+p, func(t *testing.T) {
			if _, err := f.OpenDataset(p); err == nil {
				t.Errorf("expected error for path %q", p)
			}
		})
	}
}

// TestSplitPathEdgeCases tests the splitPath function with edge cases.
func TestSplitPathEdgeCases(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"/", nil},
		{"//", nil},
		{"foo", []string{"foo"}},
		{"/foo", []string{"foo"}},
		{"/foo/", []string{"foo"}},
		{"foo/bar", []string{"foo", "bar"}},
		{"/foo/bar/", []string{"foo", "bar"}},
		{"/a/b/c/d/e/f", []string{"a", "b", "c", "d", "e", "f"}},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			result := splitPath(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitPath(%q): expected %v, got %v", tt.input, tt.expected, result)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitPath(%q)[%d]: expected %q, got %q", tt.input, i, tt.expected[i], result[i])
				}
			}
		})
	}
}

// TestFileVersionAndPath tests the superblock version and file path.
func TestFileVersionAndPath(t *testing.T) {
	path := writeTestFile(t)
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	if f.Version() != 3 {
		t.Errorf("expected version 3, got %d", f.Version())
	}
	if f.Path() != path {
		t.Errorf("expected path %q, got %q", path, f.Path())
	}
}
