package odim

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-odim/container"
)

// buildVolume fills v with a valid volume of one data group per scan.
func buildVolume(t *testing.T, v *PolarVolume, elevations ...float64) {
	t.Helper()
	require.NoError(t, v.SetSource(SourceInfo{WMO: "02954", NOD: "fianj"}))
	require.NoError(t, v.SetLongitude(27.1081))
	require.NoError(t, v.SetLatitude(60.9039))
	require.NoError(t, v.SetHeight(139))

	for i, elev := range elevations {
		s, err := v.CreateScan()
		require.NoError(t, err)
		require.NoError(t, s.SetElevation(elev))
		require.NoError(t, s.SetNumBins(5))
		require.NoError(t, s.SetNumRays(4))
		require.NoError(t, s.SetA1Gate(1))
		require.NoError(t, s.SetRangeStart(0))
		require.NoError(t, s.SetRangeScale(500))
		require.NoError(t, s.SetStartTime(testTime.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, s.SetEndTime(testTime.Add(time.Duration(i)*time.Minute+30*time.Second)))

		d, err := s.CreateData("DBZH")
		require.NoError(t, err)
		require.NoError(t, d.SetGain(0.5))
		require.NoError(t, d.SetOffset(-32))
		require.NoError(t, WriteData(d, NewMatrix[uint8](4, 5)))
	}
}

func createVolume(t *testing.T, elevations ...float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pvol.h5")
	v, err := CreatePolarVolume(path, testOptions()...)
	require.NoError(t, err)
	buildVolume(t, v, elevations...)
	require.NoError(t, v.Close())
	return path
}

func TestPolarVolumeRoundTrip(t *testing.T) {
	path := createVolume(t, 0.5, 1.5)

	v, err := OpenPolarVolume(path, testOptions()...)
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, KindPVOL, v.Kind())
	assert.Equal(t, "ODIM_H5/V2_1", v.Conventions())
	assert.Equal(t, V2_1, v.Version())
	assert.Equal(t, 2, v.ScanCount())

	version, err := v.What().GetString("version")
	require.NoError(t, err)
	assert.Equal(t, "H5rad 2.1", version)

	nominal, err := v.DateTime()
	require.NoError(t, err)
	assert.True(t, testTime.Equal(nominal))

	src, err := v.Source()
	require.NoError(t, err)
	assert.Equal(t, "fianj", src.NOD)

	lat, err := v.Latitude()
	require.NoError(t, err)
	assert.Equal(t, 60.9039, lat)

	s, err := v.Scan(1)
	require.NoError(t, err)
	assert.Equal(t, "/dataset2", s.Path())
	elev, err := s.Elevation()
	require.NoError(t, err)
	assert.Equal(t, 1.5, elev)

	quantities, err := s.Quantities()
	require.NoError(t, err)
	assert.Equal(t, []string{"DBZH"}, quantities)

	d, err := s.DataByQuantity("DBZH")
	require.NoError(t, err)
	rows, cols, err := d.Dims()
	require.NoError(t, err)
	assert.Equal(t, [2]int{4, 5}, [2]int{rows, cols})

	_, err = s.DataByQuantity("TH")
	assert.ErrorIs(t, err, ErrMissingDataset)

	start, end, err := v.TimeRange()
	require.NoError(t, err)
	assert.True(t, testTime.Equal(start))
	assert.True(t, testTime.Add(90*time.Second).Equal(end))

	assert.ErrorIs(t, v.SetHeight(10), ErrReadOnly)
	assert.ErrorIs(t, v.Flush(), ErrReadOnly)
}

func TestScanRemovalKeepsIndices(t *testing.T) {
	obj, err := New(KindPVOL, testOptions()...)
	require.NoError(t, err)
	v := obj.(*PolarVolume)

	for i := 0; i < 10; i++ {
		s, err := v.CreateScan()
		require.NoError(t, err)
		assert.Equal(t, i, s.Index())
		require.NoError(t, s.SetElevation(float64(i)))
	}

	require.NoError(t, v.RemoveScan(5))
	assert.Equal(t, 9, v.ScanCount())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 6, 7, 8, 9}, v.ScanIndices())

	_, err = v.Scan(4)
	assert.NoError(t, err)
	s6, err := v.Scan(6)
	require.NoError(t, err)
	elev, err := s6.Elevation()
	require.NoError(t, err)
	assert.Equal(t, 6.0, elev)

	_, err = v.Scan(5)
	assert.ErrorIs(t, err, ErrMissingDataset)
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorIs(t, v.RemoveScan(5), ErrMissingDataset)

	at, err := v.ScanAt(5)
	require.NoError(t, err)
	assert.Equal(t, 6, at.Index())
	_, err = v.ScanAt(9)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	s, err := v.CreateScan()
	require.NoError(t, err)
	assert.Equal(t, 10, s.Index())

	require.NoError(t, v.RemoveScan(10))
	s, err = v.CreateScan()
	require.NoError(t, err)
	assert.Equal(t, 10, s.Index())

	path := filepath.Join(t.TempDir(), "gaps.h5")
	require.NoError(t, v.SaveAs(path))
	require.NoError(t, v.Close())

	f, err := container.Open(path, container.ReadOnly)
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, f.Root().HasChild("dataset6"))
	assert.True(t, f.Root().HasChild("dataset7"))
	assert.True(t, f.Root().HasChild("dataset11"))
}

func TestScansBetween(t *testing.T) {
	obj, err := New(KindPVOL, testOptions()...)
	require.NoError(t, err)
	v := obj.(*PolarVolume)

	for _, elev := range []float64{2.0, 0.5, 1.5, 0.5, 10} {
		s, err := v.CreateScan()
		require.NoError(t, err)
		require.NoError(t, s.SetElevation(elev))
	}

	scans, err := v.ScansBetween(0.5, 2.0)
	require.NoError(t, err)
	var got []int
	for _, s := range scans {
		got = append(got, s.Index())
	}
	assert.Equal(t, []int{1, 3, 2, 0}, got)

	scans, err = v.ScansBetween(3, 4)
	require.NoError(t, err)
	assert.Empty(t, scans)

	elevs, err := v.ElevationAngles()
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 0.5, 1.5, 10}, elevs)
}

func TestTimeRangeWithoutScans(t *testing.T) {
	obj, err := New(KindPVOL, testOptions()...)
	require.NoError(t, err)
	start, end, err := obj.(*PolarVolume).TimeRange()
	require.NoError(t, err)
	assert.True(t, testTime.Equal(start))
	assert.True(t, testTime.Equal(end))
}

func TestOriginalRayIndex(t *testing.T) {
	assert.Equal(t, 7, OriginalRayIndex(0, 1, 100, 7))
	assert.Equal(t, 6, OriginalRayIndex(99, 1, 100, 7))
	assert.Equal(t, 7, OriginalRayIndex(0, -1, 100, 7))
	assert.Equal(t, 8, OriginalRayIndex(99, -1, 100, 7))
	assert.Equal(t, 0, OriginalRayIndex(93, 1, 100, 7))
	assert.Equal(t, 5, OriginalRayIndex(2, -1, 100, 7))
	assert.Equal(t, 99, OriginalRayIndex(8, -1, 100, 7))
	assert.Equal(t, -1, OriginalRayIndex(0, 1, 0, 0))
}

func TestScanAzimuthLayouts(t *testing.T) {
	angles := []AZAngles{{0, 1}, {1, 2}, {2, 3}, {3, 4}}
	times := []AZTimes{{100, 101}, {101, 102}, {102, 103}, {103, 104}}

	for _, version := range []Version{V2_0, V2_1} {
		t.Run(version.String(), func(t *testing.T) {
			obj, err := New(KindPVOL, append(testOptions(), WithVersion(version))...)
			require.NoError(t, err)
			s, err := obj.(*PolarVolume).CreateScan()
			require.NoError(t, err)

			require.NoError(t, s.SetAzimuthAngles(angles))
			require.NoError(t, s.SetAzimuthTimes(times))

			if version == V2_0 {
				assert.True(t, s.How().Has("azangles"))
				assert.False(t, s.How().Has("startazA"))
			} else {
				assert.True(t, s.How().Has("startazA"))
				raw, _ := s.How().Raw("stopazA")
				assert.Equal(t, []float64{1, 2, 3, 4}, raw)
			}

			gotAngles, err := s.AzimuthAngles()
			require.NoError(t, err)
			assert.Equal(t, angles, gotAngles)
			gotTimes, err := s.AzimuthTimes()
			require.NoError(t, err)
			assert.Equal(t, times, gotTimes)
		})
	}
}

func TestScanDirectionAndOrder(t *testing.T) {
	obj, err := New(KindPVOL, testOptions()...)
	require.NoError(t, err)
	s, err := obj.(*PolarVolume).CreateScan()
	require.NoError(t, err)

	dir, err := s.Direction()
	require.NoError(t, err)
	assert.Equal(t, 1, dir)

	// Counter-clockwise sweep stored from row 0, first ray radiated at row 2.
	require.NoError(t, s.SetAzimuthAngles([]AZAngles{{1, 0}, {0, 359}, {359, 358}, {358, 357}}))
	require.NoError(t, s.SetA1Gate(2))

	dir, err = s.Direction()
	require.NoError(t, err)
	assert.Equal(t, -1, dir)

	ordered, err := s.OrderedAzimuthAngles()
	require.NoError(t, err)
	assert.Equal(t, []AZAngles{{359, 358}, {0, 359}, {1, 0}, {358, 357}}, ordered)

	require.NoError(t, s.SetRPM(2))
	dir, err = s.Direction()
	require.NoError(t, err)
	assert.Equal(t, 1, dir)

	require.NoError(t, s.SetA1Gate(4))
	_, err = s.OrderedAzimuthAngles()
	assert.ErrorIs(t, err, ErrInvalidAttributeValue)
}

func TestDataQualityGroups(t *testing.T) {
	obj, err := New(KindPVOL, testOptions()...)
	require.NoError(t, err)
	s, err := obj.(*PolarVolume).CreateScan()
	require.NoError(t, err)
	d, err := s.CreateData("DBZH")
	require.NoError(t, err)

	q, err := d.CreateQuality()
	require.NoError(t, err)
	assert.True(t, q.IsQuality())
	assert.Equal(t, "/dataset1/data1/quality1", q.Path())
	require.NoError(t, q.How().SetString("task", "fi.fmi.ropo.detector"))

	_, err = d.CreateQuality()
	require.NoError(t, err)
	require.NoError(t, d.RemoveQuality(0))
	assert.Equal(t, []int{1}, d.QualityIndices())

	dsq, err := s.CreateQuality()
	require.NoError(t, err)
	assert.Equal(t, "/dataset1/quality1", dsq.Path())
	assert.Equal(t, 1, s.QualityCount())

	dup, err := s.CreateData("")
	require.NoError(t, err)
	require.NoError(t, dup.CopyAttributesFrom(d))
	q2, err := dup.Quantity()
	require.NoError(t, err)
	assert.Equal(t, "DBZH", q2)
}
