// Package logging hands out named zap loggers per subsystem over a single
// shared core. The CLI installs the root logger once at startup; library code
// that is constructed before that (or in tests) gets a nop logger, so no
// package ever has to nil-check.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Subsystem names used across fieldops.
const (
	SubsystemStore   = "store"
	SubsystemWatch   = "watch"
	SubsystemSync    = "sync"
	SubsystemRemote  = "remote"
	SubsystemCSV     = "csv"
	SubsystemSummary = "summary"
	SubsystemCLI     = "cli"
)

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// Init builds and installs the process-wide root logger. Verbose lowers the
// level to debug. The returned logger should be Sync()ed on shutdown.
func Init(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	SetRoot(logger)
	return logger, nil
}

// SetRoot replaces the installed root logger. Tests use this with zaptest.
func SetRoot(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	root = logger
}

// Named returns a child logger for one subsystem.
func Named(subsystem string) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(subsystem)
}
