package propstore

import (
	"sync"

	"go.uber.org/zap"
)

// logger backs every diagnostic this package emits (routing denial,
// name truncation, missing area, AreaInit labeling failure). It
// defaults to a no-op logger so that importing this package never
// prints to stderr unless a host process opts in with SetLogger.
var (
	loggerMu sync.RWMutex
	logger   *zap.SugaredLogger = zap.NewNop().Sugar()
)

// SetLogger installs l as the package-wide diagnostic sink. Passing nil
// restores the no-op logger.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l.Sugar()
}

func currentLogger() *zap.SugaredLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}
