// Package tracing wraps an operation in an otel span, a gocore stat and optional prometheus
// observations, all closed by the single function returned from Start.
package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Options func(s *TraceOptions)

type TraceOptions struct {
	ParentStat   *gocore.Stat
	Histogram    prometheus.Observer
	Counter      prometheus.Counter
	Logger       ulogger.Logger
	LogMessage   string
	LogArgs      []interface{}
	DebugLogging bool
	Tags         []attribute.KeyValue
}

func WithParentStat(stat *gocore.Stat) Options {
	return func(s *TraceOptions) {
		s.ParentStat = stat
	}
}

// WithHistogram sets the prometheus histogram to be observed, in seconds, when the span is finished.
func WithHistogram(histogram prometheus.Observer) Options {
	return func(s *TraceOptions) {
		s.Histogram = histogram
	}
}

// WithCounter sets the prometheus counter to be incremented when the span is finished.
func WithCounter(counter prometheus.Counter) Options {
	return func(s *TraceOptions) {
		s.Counter = counter
	}
}

// WithLogMessage logs format at INFO when the span starts and again, suffixed with the elapsed
// time, when it ends.
func WithLogMessage(logger ulogger.Logger, format string, args ...interface{}) Options {
	return func(s *TraceOptions) {
		s.Logger = logger
		s.LogMessage = format
		s.LogArgs = args
	}
}

// WithDebugLogMessage is WithLogMessage at DEBUG level.
func WithDebugLogMessage(logger ulogger.Logger, format string, args ...interface{}) Options {
	return func(s *TraceOptions) {
		s.Logger = logger
		s.LogMessage = format
		s.LogArgs = args
		s.DebugLogging = true
	}
}

func WithTag(key, value string) Options {
	return func(s *TraceOptions) {
		s.Tags = append(s.Tags, attribute.String(key, value))
	}
}

type UTracer struct {
	tracer     trace.Tracer
	parentStat *gocore.Stat
}

// Tracer returns a tracer for service. Stats of spans started without WithParentStat hang off
// parentStat, or off a package level root when none is given.
func Tracer(service string, parentStat ...*gocore.Stat) *UTracer {
	u := &UTracer{
		tracer: otel.Tracer(service),
	}

	if len(parentStat) > 0 && parentStat[0] != nil {
		u.parentStat = parentStat[0]
	}

	return u
}

// Start starts a span named spanName. The returned function ends it, and records the first non
// nil error passed to it on the span and in the log line.
func (u *UTracer) Start(ctx context.Context, spanName string, setOptions ...Options) (context.Context, trace.Span, func(...error)) {
	options := &TraceOptions{}
	for _, opt := range setOptions {
		opt(options)
	}

	parentStat := options.ParentStat
	if parentStat == nil {
		parentStat = u.parentStat
	}

	start := gocore.CurrentTime()

	stat, ctx := NewStatFromContext(ctx, spanName, parentStat)

	ctx, span := u.tracer.Start(ctx, spanName, trace.WithAttributes(options.Tags...))

	logf := func(format string, args ...interface{}) {
		if options.DebugLogging {
			options.Logger.Debugf(format, args...)
		} else {
			options.Logger.Infof(format, args...)
		}
	}

	if options.Logger != nil && options.LogMessage != "" {
		logf(options.LogMessage, options.LogArgs...)
	}

	return ctx, span, func(errs ...error) {
		var err error

		for _, e := range errs {
			if e != nil {
				err = e
				break
			}
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		span.End()
		stat.AddTime(start)

		if options.Histogram != nil {
			options.Histogram.Observe(time.Since(start).Seconds())
		}

		if options.Counter != nil {
			options.Counter.Inc()
		}

		if options.Logger != nil && options.LogMessage != "" {
			done := fmt.Sprintf(" DONE in %s", time.Since(start))
			if err != nil {
				done += fmt.Sprintf(" with error: %v", err)
			}

			logf("%s%s", fmt.Sprintf(options.LogMessage, options.LogArgs...), done)
		}
	}
}
