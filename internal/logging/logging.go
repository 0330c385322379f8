// Package logging owns the process-wide zap logger.
package logging

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// New builds a JSON production logger, at debug level when debug is set.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Init builds a logger and installs it as the shared one.
func Init(debug bool) (*zap.Logger, error) {
	logger, err := New(debug)
	if err != nil {
		return nil, err
	}
	Set(logger)
	return logger, nil
}

// Set replaces the shared logger. A nil logger installs a no-op one.
func Set(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	current.Store(logger)
}

// L returns the shared logger.
func L() *zap.Logger {
	return current.Load()
}

// Sync flushes the shared logger.
func Sync() {
	_ = L().Sync()
}
