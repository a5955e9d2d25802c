package odim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	listSep = ","
	pairSep = ":"
)

// FloatPair is a generic pair of numbers stored as "first:second".
type FloatPair struct {
	First  float64
	Second float64
}

// AZAngles is the azimuth sweep of one ray, in degrees.
type AZAngles struct {
	Start float64
	Stop  float64
}

// Averaged returns the centre azimuth of the ray in [0, 360). direction is
// positive for clockwise scans; a ray such as 359.5 to 0.5 is averaged to 0
// rather than 180.
func (a AZAngles) Averaged(direction int) float64 {
	start, stop := a.Start, a.Stop
	if direction >= 0 {
		if stop < start {
			stop += 360
		}
	} else if start < stop {
		start += 360
	}
	return normalizeAngle((start + stop) / 2)
}

// Width returns the angular width of the ray, respecting wrap at 360.
func (a AZAngles) Width(direction int) float64 {
	d := a.Stop - a.Start
	if direction < 0 {
		d = -d
	}
	return normalizeAngle(d)
}

// AZTimes is the acquisition window of one ray, in seconds since the epoch.
type AZTimes struct {
	Start float64
	Stop  float64
}

// Averaged returns the middle of the acquisition window.
func (t AZTimes) Averaged() float64 {
	return (t.Start + t.Stop) / 2
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// splitList splits a comma separated sequence; the empty string is the empty
// sequence.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, listSep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func formatPair(a, b float64) string {
	return formatFloat(a) + pairSep + formatFloat(b)
}

func parsePair(s string) (float64, float64, error) {
	a, b, ok := strings.Cut(s, pairSep)
	if !ok {
		return 0, 0, fmt.Errorf("pair %q has no %q separator", s, pairSep)
	}
	first, err := parseFloat(a)
	if err != nil {
		return 0, 0, fmt.Errorf("pair %q: %w", s, err)
	}
	second, err := parseFloat(b)
	if err != nil {
		return 0, 0, fmt.Errorf("pair %q: %w", s, err)
	}
	return first, second, nil
}

func formatPairs[P any](ps []P, split func(P) (float64, float64)) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = formatPair(split(p))
	}
	return strings.Join(parts, listSep)
}

func parsePairs[P any](s string, join func(a, b float64) P) ([]P, error) {
	parts := splitList(s)
	out := make([]P, 0, len(parts))
	for _, part := range parts {
		a, b, err := parsePair(part)
		if err != nil {
			return nil, err
		}
		out = append(out, join(a, b))
	}
	return out, nil
}

// pairsFromFlat builds pairs from an interleaved native array.
func pairsFromFlat[P any](vals []float64, join func(a, b float64) P) ([]P, error) {
	if len(vals)%2 != 0 {
		return nil, fmt.Errorf("odd number of values (%d) for a pair sequence", len(vals))
	}
	out := make([]P, 0, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		out = append(out, join(vals[i], vals[i+1]))
	}
	return out, nil
}
