// Package logger provides the process-wide structured logger for jdrag.
//
// Services receive a *zap.Logger through their constructors; driving
// adapters and main obtain it from L. When verbose mode is enabled via the
// --verbose flag, debug entries are written to help users follow the
// ingestion and retrieval pipeline.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the process logger.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool

	// JSON selects the production JSON encoder instead of the console encoder.
	// Long-running servers use JSON; interactive commands use the console.
	JSON bool

	// Output receives log entries. Defaults to os.Stderr.
	Output io.Writer
}

var (
	mu      sync.RWMutex
	current = Options{Output: os.Stderr}
	base    = New(current)
)

// New builds a logger from opts without touching the process logger.
func New(opts Options) *zap.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := zapcore.WarnLevel
	if opts.JSON {
		level = zapcore.InfoLevel
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	var enc zapcore.Encoder
	if opts.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(out), level))
}

// Configure replaces the process logger.
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	current = opts
	base = New(opts)
}

// L returns the process logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.RLock()
	opts := current
	mu.RUnlock()

	opts.Verbose = v
	Configure(opts)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return current.Verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.RLock()
	opts := current
	mu.RUnlock()

	opts.Output = w
	Configure(opts)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
