package odim

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-odim/container"
)

// Option configures Open, Create and New.
type Option func(*config)

type config struct {
	log     logrus.FieldLogger
	mode    container.Mode
	now     func() time.Time
	version Version
}

func newConfig(opts []Option) *config {
	c := &config{
		log:     logrus.StandardLogger(),
		mode:    container.ReadOnly,
		now:     time.Now,
		version: V2_1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithLogger sets the logger for debug and warning events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithReadWrite opens a file for modification. Changes are written on Flush
// and Close.
func WithReadWrite() Option {
	return func(c *config) {
		c.mode = container.ReadWrite
	}
}

// WithClock sets the clock used for the creation date and time.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithVersion selects the information model version written by Create and
// New. The default is V2_1.
func WithVersion(v Version) Option {
	return func(c *config) {
		c.version = v
	}
}

// TranslateOption configures the sentinels used by ReadTranslatedData and
// WriteAndTranslate.
type TranslateOption func(*sentinels)

type sentinels struct {
	noData   float64
	undetect float64
}

func newSentinels(opts []TranslateOption) sentinels {
	s := sentinels{noData: math.NaN(), undetect: math.Inf(-1)}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithNoDataValue sets the physical value standing for the nodata code.
// The default is NaN.
func WithNoDataValue(v float64) TranslateOption {
	return func(s *sentinels) {
		s.noData = v
	}
}

// WithUndetectValue sets the physical value standing for the undetect code.
// The default is negative infinity.
func WithUndetectValue(v float64) TranslateOption {
	return func(s *sentinels) {
		s.undetect = v
	}
}

// sameValue compares physical values, treating NaN as equal to NaN.
func sameValue(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}
