// Central logging system. Buffers messages and writes to configured outputs
package logctx

import (
	"context"
	"ipfee/internal/global"
	"sync"
	"time"
)

const defaultMaxQueued int = 65536

// Creates a logger at logLevel (see global.Verbosity*) and returns baseCtx carrying it
func New(baseCtx context.Context, id string, logLevel int, done <-chan struct{}) (ctxLogger context.Context) {
	ctxLogger = WithLogger(baseCtx, NewLogger(id, logLevel, done))
	return
}

// Logger not yet attached to any context
func NewLogger(id string, logLevel int, done <-chan struct{}) (logger *Logger) {
	logger = &Logger{
		ID:         id,
		CreatedAt:  time.Now(),
		PrintLevel: logLevel,
		MaxQueued:  defaultMaxQueued,
		Done:       done,
		wg:         new(sync.WaitGroup),
	}
	logger.cond = sync.NewCond(&logger.mutex)
	return
}

func WithLogger(ctx context.Context, logger *Logger) (ctxLogger context.Context) {
	ctxLogger = context.WithValue(ctx, global.LoggerKey, logger)
	return
}

// Logger carried by ctx, nil when there is none
func GetLogger(ctx context.Context) (logger *Logger) {
	logger, _ = ctx.Value(global.LoggerKey).(*Logger)
	return
}

// Adjusts the level of the logger in ctx (no-op without one)
func SetLogLevel(ctx context.Context, newLevel int) {
	logger := GetLogger(ctx)
	if logger == nil {
		return
	}
	logger.mutex.Lock()
	logger.PrintLevel = newLevel
	logger.mutex.Unlock()
}
