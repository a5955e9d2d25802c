package odim

import (
	"fmt"
	"sort"
	"time"
)

// PolarVolume is a PVOL object: a set of scans from one radar, each stored
// as a dataset.
type PolarVolume struct {
	object
}

// CreateScan appends a scan after the highest index.
func (v *PolarVolume) CreateScan() (*Scan, error) {
	d, err := v.createDataset(ProductSCAN.String())
	if err != nil {
		return nil, err
	}
	return &Scan{Dataset: d}, nil
}

// Scan returns the scan with the given storage index.
func (v *PolarVolume) Scan(index int) (*Scan, error) {
	d, err := v.dataset(index)
	if err != nil {
		return nil, err
	}
	return &Scan{Dataset: d}, nil
}

// ScanCount returns the number of scans.
func (v *PolarVolume) ScanCount() int {
	return v.DatasetCount()
}

// ScanIndices returns the storage indices of the scans in increasing order.
func (v *PolarVolume) ScanIndices() []int {
	return v.DatasetIndices()
}

// ScanAt returns the scan at position pos of ScanIndices.
func (v *PolarVolume) ScanAt(pos int) (*Scan, error) {
	d, err := v.DatasetAt(pos)
	if err != nil {
		return nil, err
	}
	return &Scan{Dataset: d}, nil
}

// RemoveScan removes a scan without renumbering the others.
func (v *PolarVolume) RemoveScan(index int) error {
	return v.removeDataset(index)
}

// Scans returns every scan in index order.
func (v *PolarVolume) Scans() ([]*Scan, error) {
	idx := v.ScanIndices()
	out := make([]*Scan, 0, len(idx))
	for _, i := range idx {
		s, err := v.Scan(i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ScansBetween returns the scans with an elevation in [min, max], sorted by
// elevation. Scans of equal elevation keep their index order.
func (v *PolarVolume) ScansBetween(min, max float64) ([]*Scan, error) {
	scans, err := v.Scans()
	if err != nil {
		return nil, err
	}

	type entry struct {
		scan *Scan
		elev float64
	}
	var picked []entry
	for _, s := range scans {
		elev, err := s.Elevation()
		if err != nil {
			return nil, err
		}
		if elev >= min && elev <= max {
			picked = append(picked, entry{s, elev})
		}
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].elev < picked[j].elev })

	out := make([]*Scan, len(picked))
	for i, e := range picked {
		out[i] = e.scan
	}
	return out, nil
}

// ElevationAngles returns the distinct scan elevations in the order they
// first occur.
func (v *PolarVolume) ElevationAngles() ([]float64, error) {
	scans, err := v.Scans()
	if err != nil {
		return nil, err
	}
	seen := make(map[float64]bool)
	var out []float64
	for _, s := range scans {
		elev, err := s.Elevation()
		if err != nil {
			return nil, err
		}
		if !seen[elev] {
			seen[elev] = true
			out = append(out, elev)
		}
	}
	return out, nil
}

// TimeRange returns the earliest scan start and the latest scan end. A
// volume without scans spans its nominal time.
func (v *PolarVolume) TimeRange() (start, end time.Time, err error) {
	scans, err := v.Scans()
	if err != nil {
		return start, end, err
	}
	if len(scans) == 0 {
		t, err := v.DateTime()
		return t, t, err
	}

	for i, s := range scans {
		st, err := s.StartTime()
		if err != nil {
			return start, end, err
		}
		et, err := s.EndTime()
		if err != nil {
			return start, end, err
		}
		if et.Before(st) {
			return start, end, formatErr(ErrInvalidAttributeValue, s.What().Path(), "endtime",
				fmt.Errorf("scan ends at %v before it starts at %v", et, st))
		}
		if i == 0 || st.Before(start) {
			start = st
		}
		if i == 0 || et.After(end) {
			end = et
		}
	}
	return start, end, nil
}

// Longitude returns where/lon of the radar in degrees.
func (v *PolarVolume) Longitude() (float64, error) { return v.Where().GetDouble("lon") }

// Latitude returns where/lat of the radar in degrees.
func (v *PolarVolume) Latitude() (float64, error) { return v.Where().GetDouble("lat") }

// Height returns where/height of the antenna above sea level in m.
func (v *PolarVolume) Height() (float64, error) { return v.Where().GetDouble("height") }

func (v *PolarVolume) SetLongitude(x float64) error { return v.Where().SetDouble("lon", x) }
func (v *PolarVolume) SetLatitude(x float64) error { return v.Where().SetDouble("lat", x) }
func (v *PolarVolume) SetHeight(x float64) error { return v.Where().SetDouble("height", x) }
