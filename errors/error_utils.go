// Package errors provides the typed error taxonomy used across coinview, together with helpers to
// categorise errors for retry decisions, logging and metrics.
package errors

import (
	"context"
	"errors"
	"strings"
)

// IsRetryableError determines if an error is transient and the operation should be retried.
// This includes network timeouts, temporary unavailability, and other transient conditions.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Check if context was cancelled - not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_NETWORK_TIMEOUT,
			ERR_NETWORK_ERROR,
			ERR_NETWORK_CONNECTION_REFUSED,
			ERR_SERVICE_UNAVAILABLE,
			ERR_STORAGE_UNAVAILABLE,
			ERR_STORAGE_ERROR:
			return true
		}
	}

	return false
}

// IsRejection reports whether err is a consensus verdict against a block or one of its
// transactions. Rejections are terminal: the same block will fail the same way every time, so the
// caller must not retry it. Everything else is an infrastructure fault.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if !As(err, &tErr) {
		return false
	}

	// only the outermost code counts, a store fault wrapped in a block error is still a verdict
	code := tErr.Code()

	return code >= 10 && code <= 49 && code != ERR_BLOCK_NOT_FOUND && code != ERR_TX_NOT_FOUND
}

// IsNetworkError determines if an error is network-related.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_NETWORK_ERROR,
			ERR_NETWORK_TIMEOUT,
			ERR_NETWORK_CONNECTION_REFUSED:
			return true
		}
	}

	errStr := strings.ToLower(err.Error())
	networkStrings := []string{
		"dial tcp",
		"no such host",
		"connection refused",
		"connection reset",
		"broken pipe",
	}

	for _, s := range networkStrings {
		if strings.Contains(errStr, s) {
			return true
		}
	}

	return false
}

// IsTemporaryError determines if an error is temporary and might succeed if retried later.
// This is a subset of retryable errors that are explicitly temporary.
func IsTemporaryError(err error) bool {
	if err == nil {
		return false
	}

	type temporary interface {
		Temporary() bool
	}

	if te, ok := err.(temporary); ok {
		return te.Temporary()
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_SERVICE_UNAVAILABLE,
			ERR_STORAGE_UNAVAILABLE:
			return true
		}
	}

	return false
}

// IsContextError determines if an error is related to context cancellation or deadline.
func IsContextError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var tErr *Error
	if As(err, &tErr) {
		if tErr.Code() == ERR_CONTEXT_CANCELED || tErr.Code() == ERR_CONTEXT {
			return true
		}
	}

	return false
}

// GetErrorCategory returns a string representing the category of the error.
// This is useful for logging and metrics labels.
func GetErrorCategory(err error) string {
	if err == nil {
		return "none"
	}

	if IsContextError(err) {
		return "context"
	}

	if IsNetworkError(err) {
		return "network"
	}

	if IsTemporaryError(err) {
		return "temporary"
	}

	var tErr *Error
	if As(err, &tErr) {
		// Group by error code ranges
		code := tErr.Code()
		switch {
		case code >= 10 && code <= 19:
			return "block"
		case code >= 30 && code <= 49:
			return "transaction"
		case code >= 50 && code <= 59:
			return "service"
		case code >= 60 && code <= 69:
			return "storage"
		case code >= 70 && code <= 79:
			return "utxo"
		case code >= 100 && code <= 109:
			return "state"
		}
	}

	return "unknown"
}
