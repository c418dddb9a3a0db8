package ops

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the kernel logger. It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger replaces the kernel logger. nil restores the no-op logger.
// Kernels bind the logger when Registry.Create builds them, so only kernels
// created afterwards use the new one.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
