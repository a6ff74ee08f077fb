package ulogger

import (
	"github.com/ordishs/gocore"
)

// GoCoreLogger routes log lines through gocore so they show up next to the gocore stats pages.
type GoCoreLogger struct {
	*gocore.Logger
	skipFrame int
}

func NewGoCoreLogger(service string, options ...Option) *GoCoreLogger {
	if service == "" {
		service = "coinview"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	return &GoCoreLogger{gocore.Log(service, gocore.NewLogLevelFromString(opts.logLevel)), opts.skip}
}

func (g *GoCoreLogger) New(service string, options ...Option) Logger {
	opts := DefaultOptions()
	opts.skip = g.skipFrame

	for _, o := range options {
		o(opts)
	}

	return &GoCoreLogger{
		gocore.Log(service, g.Logger.GetLogLevel()),
		opts.skip,
	}
}

func (g *GoCoreLogger) Duplicate(options ...Option) Logger {
	opts := DefaultOptions()
	opts.skip = g.skipFrame

	for _, o := range options {
		o(opts)
	}

	return &GoCoreLogger{g.Logger, opts.skip}
}

// SetLogLevel is a noop, the level of a gocore logger is fixed when it is created.
func (g *GoCoreLogger) SetLogLevel(_ string) {}
