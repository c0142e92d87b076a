package utils

import (
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"
)

const stackBufSize = 4096

// Recover must be deferred directly. It logs a panic with its stack and
// swallows it so a background worker keeps running.
func Recover(name string, logger *zap.SugaredLogger) {
	if r := recover(); r != nil {
		buf := make([]byte, stackBufSize)
		n := runtime.Stack(buf, false)
		if logger == nil {
			fmt.Fprintf(os.Stderr, "panic in %s: %v\n%s\n", name, r, buf[:n])
			return
		}
		logger.Errorw("panic recovered", "worker", name, "panic", r, "stack", string(buf[:n]))
	}
}
