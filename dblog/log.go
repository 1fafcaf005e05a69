// Package dblog provides the structured logger shared by the seqdb
// decoders and the seqdbcat CLI. Non-fatal conditions (trailing index
// bytes, a malformed definition line inside an otherwise good record)
// are surfaced here rather than through an error return, so one bad
// record or a few stray bytes never fails an otherwise good decode.
package dblog

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	once    sync.Once
	logger  *log.Logger
	mu      sync.Mutex
	current *log.Logger
)

func std() *log.Logger {
	once.Do(func() {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "seqdb",
		})
	})
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		return current
	}
	return logger
}

// SetLevel adjusts the minimum level logged by the package logger.
func SetLevel(level log.Level) {
	std().SetLevel(level)
}

// SetOutput replaces the package logger. Used by the CLI's --quiet
// flag to discard log output.
func SetOutput(l *log.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// Warnf emits a warning with structured key/value context, e.g.
//
//	dblog.Warnf("trailing bytes after offset tables", "volume", name, "extra", n)
func Warnf(msg string, kv ...any) {
	std().Warn(msg, kv...)
}

// Errorf emits an error-level message with structured context.
func Errorf(msg string, kv ...any) {
	std().Error(msg, kv...)
}
