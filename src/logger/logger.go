package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Logger defines the interface for logging throughout the application.
// The build log of a step run is a Logger; every stage writes one human-readable line to it.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ConsoleLogger writes human-readable logs to stdout/stderr.
// Used for normal operation and debugging.
type ConsoleLogger struct{}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	fmt.Printf("[DEBUG] "+msg+"\n", args...)
}

// SilentLogger discards all log messages.
// Used when running under the TUI or the MCP server, where stdout belongs to someone else.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}

// WriterLogger writes prefixed lines to an arbitrary writer.
// Debug lines are dropped unless verbose is set.
type WriterLogger struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

func NewWriterLogger(w io.Writer, verbose bool) *WriterLogger {
	return &WriterLogger{w: w, verbose: verbose}
}

func (l *WriterLogger) write(level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "["+level+"] "+msg+"\n", args...)
}

func (l *WriterLogger) Info(msg string, args ...interface{})  { l.write("INFO", msg, args...) }
func (l *WriterLogger) Error(msg string, args ...interface{}) { l.write("ERROR", msg, args...) }

func (l *WriterLogger) Debug(msg string, args ...interface{}) {
	if l.verbose {
		l.write("DEBUG", msg, args...)
	}
}

// RecordingLogger keeps every formatted line in memory.
// The HTTP API returns these lines as the build log of a run; tests assert on them.
type RecordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (r *RecordingLogger) record(level, msg string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, "["+level+"] "+fmt.Sprintf(msg, args...))
}

func (r *RecordingLogger) Info(msg string, args ...interface{})  { r.record("INFO", msg, args...) }
func (r *RecordingLogger) Error(msg string, args ...interface{}) { r.record("ERROR", msg, args...) }
func (r *RecordingLogger) Debug(msg string, args ...interface{}) { r.record("DEBUG", msg, args...) }

// Lines returns a copy of the recorded lines.
func (r *RecordingLogger) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Contains reports whether any recorded line contains substr.
func (r *RecordingLogger) Contains(substr string) bool {
	for _, line := range r.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// Tee fans every message out to all given loggers.
func Tee(loggers ...Logger) Logger {
	return teeLogger(loggers)
}

type teeLogger []Logger

func (t teeLogger) Info(msg string, args ...interface{}) {
	for _, l := range t {
		l.Info(msg, args...)
	}
}

func (t teeLogger) Error(msg string, args ...interface{}) {
	for _, l := range t {
		l.Error(msg, args...)
	}
}

func (t teeLogger) Debug(msg string, args ...interface{}) {
	for _, l := range t {
		l.Debug(msg, args...)
	}
}
