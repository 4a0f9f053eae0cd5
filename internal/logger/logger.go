// Package logger provides structured, leveled logging for Stryda.
// Messages carry key/value pairs and are written by zap. Info and above
// are always written; Debug messages appear when verbose mode is enabled
// via the --verbose flag.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	verbose bool
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar   = newSugar(os.Stderr, false)
)

// Logger is a child logger carrying fixed key/value pairs.
type Logger struct {
	s *zap.SugaredLogger
}

func newSugar(w io.Writer, jsonOutput bool) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonOutput {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects logs to w as JSON lines.
// Passing os.Stderr restores the console format. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	sugar = newSugar(w, w != os.Stderr)
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Debug logs a message when verbose mode is enabled.
func Debug(msg string, keysAndValues ...any) {
	current().Debugw(msg, sanitizeKVs(keysAndValues)...)
}

// Info logs an informational message.
func Info(msg string, keysAndValues ...any) {
	current().Infow(msg, sanitizeKVs(keysAndValues)...)
}

// Warn logs a warning.
func Warn(msg string, keysAndValues ...any) {
	current().Warnw(msg, sanitizeKVs(keysAndValues)...)
}

// Error logs an error.
func Error(msg string, keysAndValues ...any) {
	current().Errorw(msg, sanitizeKVs(keysAndValues)...)
}

// Section logs a section header when verbose mode is enabled.
func Section(name string) {
	current().Debugw("=== "+name+" ===", "section", name)
}

// With returns a child logger that adds the given pairs to every entry.
// The child keeps the output that was current when it was created.
func With(keysAndValues ...any) *Logger {
	return &Logger{s: current().With(sanitizeKVs(keysAndValues)...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.s.Infow(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.s.Warnw(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.s.Errorw(msg, sanitizeKVs(keysAndValues)...)
}

// With returns a child of l with additional pairs.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{s: l.s.With(sanitizeKVs(keysAndValues)...)}
}

// sanitizeKVs masks values whose key names a credential.
func sanitizeKVs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key, _ := kv[i].(string)
		if isRedactKey(strings.ToLower(key)) {
			out = append(out, kv[i], "[REDACTED]")
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}

func isRedactKey(key string) bool {
	switch {
	case strings.Contains(key, "password"),
		strings.Contains(key, "secret"),
		strings.Contains(key, "token"),
		strings.Contains(key, "dsn"),
		strings.Contains(key, "database_url"):
		return true
	default:
		return false
	}
}
