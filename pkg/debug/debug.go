// Package debug provides conditional debug logging for tw.
//
// Debug logging is enabled by setting the TW_DEBUG environment variable:
//
//	TW_DEBUG=1 tw
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops.
package debug

import (
	"log"
	"os"
	"time"
)

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("TW_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[TW_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming records how long an operation took.
func LogTiming(op string, elapsed time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %s", op, elapsed)
}
