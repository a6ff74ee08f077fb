// Package mocklogger provides a ulogger.Logger that records what it is asked to log.
package mocklogger

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/bsv-blockchain/coinview/ulogger"
)

// MockLogger counts calls per method and keeps every formatted line, prefixed with its level.
type MockLogger struct {
	mu    sync.Mutex
	calls map[string]int
	lines []string
}

func NewTestLogger() *MockLogger {
	return &MockLogger{
		calls: make(map[string]int),
	}
}

func (l *MockLogger) LogLevel() int {
	return 0
}

func (l *MockLogger) SetLogLevel(_ string) {
	// ignore
}

// New returns a fresh logger, calls made on it are not recorded here.
func (l *MockLogger) New(_ string, _ ...ulogger.Option) ulogger.Logger {
	return NewTestLogger()
}

// Duplicate returns the logger itself so calls on the duplicate are recorded.
func (l *MockLogger) Duplicate(_ ...ulogger.Option) ulogger.Logger {
	return l
}

func (l *MockLogger) Debugf(format string, args ...interface{}) {
	l.record("Debugf", "DEBUG", format, args...)
}

func (l *MockLogger) Infof(format string, args ...interface{}) {
	l.record("Infof", "INFO", format, args...)
}

func (l *MockLogger) Warnf(format string, args ...interface{}) {
	l.record("Warnf", "WARN", format, args...)
}

func (l *MockLogger) Errorf(format string, args ...interface{}) {
	l.record("Errorf", "ERROR", format, args...)
}

func (l *MockLogger) Fatalf(format string, args ...interface{}) {
	l.record("Fatalf", "FATAL", format, args...)
}

func (l *MockLogger) record(methodName, level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls[methodName]++
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

// AssertNumberOfCalls verifies the number of calls made to methodName.
func (l *MockLogger) AssertNumberOfCalls(t *testing.T, methodName string, expectedCalls int) {
	t.Helper()

	l.mu.Lock()
	defer l.mu.Unlock()

	if actualCalls := l.calls[methodName]; actualCalls != expectedCalls {
		t.Errorf("Expected %v calls to %s, got %v", expectedCalls, methodName, actualCalls)
	}
}

// Contains reports whether any recorded line contains substr.
func (l *MockLogger) Contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}

	return false
}

// Lines returns a copy of the recorded lines.
func (l *MockLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.lines...)
}

func (l *MockLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = make(map[string]int)
	l.lines = nil
}
