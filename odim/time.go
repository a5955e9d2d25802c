package odim

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "20060102"
	timeLayout = "150405"
)

// MakeTime returns the UTC instant of the given calendar fields.
func MakeTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
}

// SplitYMDHMS splits t, taken in UTC, into calendar fields.
func SplitYMDHMS(t time.Time) (year, month, day, hour, min, sec int) {
	t = t.UTC()
	return t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()
}

// FormatDate renders t as an ODIM date, YYYYMMDD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// FormatTime renders t as an ODIM time, HHMMSS.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseDateTime combines an ODIM date and time into a UTC instant.
func ParseDateTime(date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if len(date) != len(dateLayout) {
		return time.Time{}, fmt.Errorf("date %q is not YYYYMMDD", date)
	}
	if len(clock) != len(timeLayout) {
		return time.Time{}, fmt.Errorf("time %q is not HHMMSS", clock)
	}
	return time.ParseInLocation(dateLayout+timeLayout, date+clock, time.UTC)
}

// GetDateTime reads the date and time attribute pair named dateName and
// timeName, such as "startdate" and "starttime".
func (g *Group) GetDateTime(dateName, timeName string) (time.Time, error) {
	date, err := g.GetString(dateName)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := g.GetString(timeName)
	if err != nil {
		return time.Time{}, err
	}
	t, err := ParseDateTime(date, clock)
	if err != nil {
		return time.Time{}, formatErr(ErrInvalidAttributeValue, g.Path(), dateName, err)
	}
	return t, nil
}

// SetDateTime writes t as the date and time attribute pair.
func (g *Group) SetDateTime(dateName, timeName string, t time.Time) error {
	if err := g.SetString(dateName, FormatDate(t)); err != nil {
		return err
	}
	return g.SetString(timeName, FormatTime(t))
}
