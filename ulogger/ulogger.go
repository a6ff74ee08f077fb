// Package ulogger defines the Logger used throughout coinview and its zerolog, gocore and test
// implementations.
package ulogger

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
	colorCyan
	colorWhite

	colorBold     = 1
	colorDarkGray = 90
)

type Logger interface {
	LogLevel() int
	SetLogLevel(level string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	New(service string, options ...Option) Logger
	Duplicate(options ...Option) Logger
}

// New returns a logger of the type selected with WithLoggerType, zerolog by default.
func New(service string, options ...Option) Logger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	switch opts.loggerType {
	case "gocore":
		return NewGoCoreLogger(service, options...)
	default:
		return NewZeroLogger(service, options...)
	}
}

// TestLogger discards everything.
type TestLogger struct{}

func (l TestLogger) LogLevel() int { return 0 }
func (l TestLogger) SetLogLevel(string) {}
func (l TestLogger) Debugf(string, ...interface{}) {}
func (l TestLogger) Infof(string, ...interface{}) {}
func (l TestLogger) Warnf(string, ...interface{}) {}
func (l TestLogger) Errorf(string, ...interface{}) {}
func (l TestLogger) Fatalf(string, ...interface{}) {}
func (l TestLogger) New(string, ...Option) Logger { return l }
func (l TestLogger) Duplicate(...Option) Logger { return l }
