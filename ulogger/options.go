package ulogger

import (
	"io"
	"os"
)

type Options struct {
	writer     io.Writer
	loggerType string
	logLevel   string
	skip       int
}

type Option func(*Options)

func DefaultOptions() *Options {
	return &Options{
		writer:     os.Stdout,
		loggerType: "zerolog",
		logLevel:   "INFO",
		skip:       0,
	}
}

func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.writer = w
	}
}

func WithLoggerType(loggerType string) Option {
	return func(o *Options) {
		o.loggerType = loggerType
	}
}

func WithLevel(level string) Option {
	return func(o *Options) {
		o.logLevel = level
	}
}

// WithSkipFrame adds extra frames to skip when reporting the caller, for loggers wrapped by helpers.
func WithSkipFrame(skip int) Option {
	return func(o *Options) {
		o.skip = skip
	}
}
