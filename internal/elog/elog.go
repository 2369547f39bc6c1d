// Package elog bootstraps the ambient structured logger shared by the
// analyzer and the backend. It is strictly a tracing aid: diagnostics that
// must reach the compiler's user go through the analyzer's error list
// (Pass.Errors), never through this logger.
package elog

import (
	"sync"

	"github.com/xyproto/env/v2"
	"go.uber.org/zap"
)

var (
	once   sync.Once
	logger *zap.SugaredLogger
)

// Trace returns the process-wide tracing logger, built once on first use.
// Verbosity is controlled by the ECC_TRACE environment variable: when
// unset or false the logger discards debug-level records.
func Trace() *zap.SugaredLogger {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		if env.Bool("ECC_TRACE") {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		}
		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		logger = base.Sugar()
	})
	return logger
}

// BackendComments reports whether the backend should stamp trailing "# ..."
// annotations on generated instructions, controlled by
// ECC_BACKEND_COMMENTS.
func BackendComments() bool {
	return env.Bool("ECC_BACKEND_COMMENTS")
}
