// Package logger is the shared diagnostic log for the corpus pipeline.
// Debug and Info trace crawl invocations and listing queries and are
// gated behind the --verbose flag; Warn surfaces dropped or skipped
// data unconditionally. All output goes to stderr so it never mixes
// with command output.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// logf writes one tagged line. Caller holds at least a read lock.
func logf(tag, format string, args ...any) {
	fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
}

// Debug traces fine-grained pipeline steps, one line per batch or page.
// Suppressed unless verbose.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		logf("DEBUG", format, args...)
	}
}

// Info reports phase transitions such as crawl start and completion.
// Suppressed unless verbose.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		logf("INFO", format, args...)
	}
}

// Warn reports data the pipeline dropped or skipped. A warning is the
// only trace such data leaves, so it writes even when quiet.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	logf("WARN", format, args...)
}
