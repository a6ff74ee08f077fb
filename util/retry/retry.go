package retry

import (
	"context"
	"time"

	"github.com/bsv-blockchain/coinview/ulogger"
)

type Options func(*SetOptions)

type SetOptions struct {
	RetryCount          int
	BackoffMultiplier   int
	BackoffDurationType time.Duration
	ExponentialBackoff  bool
	MaxBackoff          time.Duration
	Message             string
	RetryIf             func(error) bool
}

func WithRetryCount(retryCount int) Options {
	return func(o *SetOptions) {
		o.RetryCount = retryCount
	}
}

func WithBackoffMultiplier(backoffMultiplier int) Options {
	return func(o *SetOptions) {
		o.BackoffMultiplier = backoffMultiplier
	}
}

func WithBackoffDurationType(durationType time.Duration) Options {
	return func(o *SetOptions) {
		o.BackoffDurationType = durationType
	}
}

// WithExponentialBackoff doubles the wait after every failed attempt, capped at MaxBackoff.
func WithExponentialBackoff() Options {
	return func(o *SetOptions) {
		o.ExponentialBackoff = true
	}
}

func WithMaxBackoff(maxBackoff time.Duration) Options {
	return func(o *SetOptions) {
		o.MaxBackoff = maxBackoff
	}
}

func WithMessage(message string) Options {
	return func(o *SetOptions) {
		o.Message = message
	}
}

// WithRetryIf stops retrying as soon as retryIf returns false for an error.
func WithRetryIf(retryIf func(error) bool) Options {
	return func(o *SetOptions) {
		o.RetryIf = retryIf
	}
}

// Retry calls f until it succeeds, RetryCount attempts have been made, the error is not retryable
// or ctx is done. It returns the result and error of the last attempt.
func Retry[T any](ctx context.Context, logger ulogger.Logger, f func() (T, error), opts ...Options) (T, error) {
	setOptions := &SetOptions{
		RetryCount:          3,
		BackoffMultiplier:   2,
		BackoffDurationType: time.Second,
		MaxBackoff:          30 * time.Second,
		Message:             "retrying",
	}

	for _, opt := range opts {
		opt(setOptions)
	}

	if setOptions.RetryCount < 1 {
		setOptions.RetryCount = 1
	}

	var (
		result T
		err    error
	)

	backoff := setOptions.BackoffDurationType

	for i := 0; i < setOptions.RetryCount; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		result, err = f()
		if err == nil {
			return result, nil
		}

		if setOptions.RetryIf != nil && !setOptions.RetryIf(err) {
			return result, err
		}

		if i == setOptions.RetryCount-1 {
			break
		}

		logger.Warnf("%s (attempt %d of %d): %v", setOptions.Message, i+1, setOptions.RetryCount, err)

		if setOptions.ExponentialBackoff {
			if sleepErr := sleepFunc(ctx, backoff); sleepErr != nil {
				return result, sleepErr
			}

			backoff = CappedExponentialBackoff(backoff, 2, setOptions.MaxBackoff)
		} else if sleepErr := BackoffAndSleep(ctx, i, setOptions.BackoffMultiplier, setOptions.BackoffDurationType); sleepErr != nil {
			return result, sleepErr
		}
	}

	return result, err
}
