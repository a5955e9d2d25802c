package odim

import (
	"fmt"
	"math"
)

// Scan is one elevation sweep of a polar volume. Rows of its sample
// matrices are rays in storage order; a1gate is the row of the first ray
// acquired.
type Scan struct {
	*Dataset
}

// OriginalRayIndex maps logical ray i to the row it is stored in. Logical
// ray 0 is the stored row a1gate and later rays step through the rows in the
// sense of direction, wrapping modulo numRays: (a1gate+i) mod numRays for a
// positive direction, (a1gate-i+numRays) mod numRays otherwise. It returns
// -1 unless numRays is positive.
func OriginalRayIndex(i, direction, numRays, a1gate int) int {
	if numRays <= 0 {
		return -1
	}
	if direction > 0 {
		return ((a1gate+i)%numRays + numRays) % numRays
	}
	return ((a1gate-i)%numRays + numRays) % numRays
}

// Elevation returns where/elangle in degrees.
func (s *Scan) Elevation() (float64, error) { return s.Where().GetDouble("elangle") }

// NumBins returns where/nbins.
func (s *Scan) NumBins() (int, error) { return s.Where().GetInt("nbins") }

// NumRays returns where/nrays.
func (s *Scan) NumRays() (int, error) { return s.Where().GetInt("nrays") }

// A1Gate returns where/a1gate, the storage row of the first ray radiated.
func (s *Scan) A1Gate() (int, error) { return s.Where().GetInt("a1gate") }

// RangeStart returns where/rstart in km.
func (s *Scan) RangeStart() (float64, error) { return s.Where().GetDouble("rstart") }

// RangeScale returns where/rscale in m.
func (s *Scan) RangeScale() (float64, error) { return s.Where().GetDouble("rscale") }

func (s *Scan) SetElevation(v float64) error { return s.Where().SetDouble("elangle", v) }
func (s *Scan) SetNumBins(v int) error { return s.Where().SetInt("nbins", v) }
func (s *Scan) SetNumRays(v int) error { return s.Where().SetInt("nrays", v) }
func (s *Scan) SetA1Gate(v int) error { return s.Where().SetInt("a1gate", v) }
func (s *Scan) SetRangeStart(v float64) error { return s.Where().SetDouble("rstart", v) }
func (s *Scan) SetRangeScale(v float64) error { return s.Where().SetDouble("rscale", v) }

// AzimuthAngles returns the per-ray azimuth sweeps in storage order, from
// how/startazA and how/stopazA or, for older files, how/azangles.
func (s *Scan) AzimuthAngles() ([]AZAngles, error) {
	how := s.How()
	if how.Has("startazA") || how.Has("stopazA") {
		return zipPairs(how, "startazA", "stopazA", func(a, b float64) AZAngles {
			return AZAngles{Start: a, Stop: b}
		})
	}
	return Get[[]AZAngles](how, "azangles")
}

// SetAzimuthAngles stores the per-ray azimuth sweeps in the layout of the
// file version.
func (s *Scan) SetAzimuthAngles(a []AZAngles) error {
	if s.version == V2_0 {
		return Set(s.How(), "azangles", a)
	}
	start := make([]float64, len(a))
	stop := make([]float64, len(a))
	for i, p := range a {
		start[i], stop[i] = p.Start, p.Stop
	}
	return setArrays(s.How(), "startazA", start, "stopazA", stop)
}

// AzimuthTimes returns the per-ray acquisition windows in storage order,
// from how/startazT and how/stopazT or, for older files, how/aztimes.
func (s *Scan) AzimuthTimes() ([]AZTimes, error) {
	how := s.How()
	if how.Has("startazT") || how.Has("stopazT") {
		return zipPairs(how, "startazT", "stopazT", func(a, b float64) AZTimes {
			return AZTimes{Start: a, Stop: b}
		})
	}
	return Get[[]AZTimes](how, "aztimes")
}

// SetAzimuthTimes stores the per-ray acquisition windows in the layout of
// the file version.
func (s *Scan) SetAzimuthTimes(t []AZTimes) error {
	if s.version == V2_0 {
		return Set(s.How(), "aztimes", t)
	}
	start := make([]float64, len(t))
	stop := make([]float64, len(t))
	for i, p := range t {
		start[i], stop[i] = p.Start, p.Stop
	}
	return setArrays(s.How(), "startazT", start, "stopazT", stop)
}

// Direction returns +1 for clockwise and -1 for counter-clockwise scans.
// It is the sign of how/rpm when set, otherwise derived from the sweep of
// the first ray, and clockwise when neither is known.
func (s *Scan) Direction() (int, error) {
	how := s.How()
	if how.Has("rpm") {
		rpm, err := how.GetDouble("rpm")
		if err != nil {
			return 0, err
		}
		switch {
		case rpm > 0:
			return 1, nil
		case rpm < 0:
			return -1, nil
		}
	}

	angles, err := s.AzimuthAngles()
	if err != nil || len(angles) == 0 {
		return 1, nil
	}
	d := math.Mod(angles[0].Stop-angles[0].Start+540, 360) - 180
	if d < 0 {
		return -1, nil
	}
	return 1, nil
}

// SetRPM sets how/rpm; negative values mean counter-clockwise rotation.
func (s *Scan) SetRPM(v float64) error {
	return s.How().SetDouble("rpm", v)
}

// OrderedAzimuthAngles returns the azimuth sweeps in logical order: the
// first element is the ray at a1gate, followed by the rays in the
// direction of rotation.
func (s *Scan) OrderedAzimuthAngles() ([]AZAngles, error) {
	angles, err := s.AzimuthAngles()
	if err != nil {
		return nil, err
	}
	return reorderRays(s, angles)
}

// OrderedAzimuthTimes returns the acquisition windows in logical order.
func (s *Scan) OrderedAzimuthTimes() ([]AZTimes, error) {
	times, err := s.AzimuthTimes()
	if err != nil {
		return nil, err
	}
	return reorderRays(s, times)
}

func reorderRays[T any](s *Scan, rays []T) ([]T, error) {
	n := len(rays)
	if n == 0 {
		return rays, nil
	}

	a1gate, err := GetOr(s.Where(), "a1gate", 0)
	if err != nil {
		return nil, err
	}
	if a1gate < 0 || a1gate >= n {
		return nil, formatErr(ErrInvalidAttributeValue, s.Where().Path(), "a1gate",
			fmt.Errorf("%d outside %d rays", a1gate, n))
	}
	dir, err := s.Direction()
	if err != nil {
		return nil, err
	}

	out := make([]T, n)
	for i := range out {
		out[i] = rays[OriginalRayIndex(i, dir, n, a1gate)]
	}
	return out, nil
}

func zipPairs[P any](g *Group, startName, stopName string, join func(a, b float64) P) ([]P, error) {
	start, err := g.GetDoubles(startName, true)
	if err != nil {
		return nil, err
	}
	stop, err := g.GetDoubles(stopName, true)
	if err != nil {
		return nil, err
	}
	if len(start) != len(stop) {
		return nil, formatErr(ErrInvalidAttributeValue, g.Path(), stopName,
			fmt.Errorf("%d values for %d %s values", len(stop), len(start), startName))
	}
	out := make([]P, len(start))
	for i := range start {
		out[i] = join(start[i], stop[i])
	}
	return out, nil
}

// setArrays stores two parallel per-ray arrays as native double arrays.
func setArrays(g *Group, aName string, a []float64, bName string, b []float64) error {
	for _, attr := range []struct {
		name string
		vals []float64
	}{{aName, a}, {bName, b}} {
		var err error
		if len(attr.vals) == 0 {
			err = g.SetDoubles(attr.name, nil)
		} else {
			err = g.setRaw(attr.name, attr.vals)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
