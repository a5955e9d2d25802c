package container

import (
	"github.com/sirupsen/logrus"
)

// Mode selects how a file is opened.
type Mode int

const (
	// ReadOnly files reject every modification with ErrReadOnly.
	ReadOnly Mode = iota
	// ReadWrite files are written back on Flush and Close.
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

// Option configures a File.
type Option func(*options)

type options struct {
	log logrus.FieldLogger
}

func defaultOptions() *options {
	return &options{
		log: logrus.StandardLogger(),
	}
}

// WithLogger sets the logger used for debug and warning events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}
