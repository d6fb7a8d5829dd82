package logctx

import (
	"context"
	"fmt"
	"strings"
)

// Records an event on the logger in ctx, tagged with the ctx tag list.
// vars are applied only when message contains a verb; without a logger this does nothing.
func LogEvent(ctx context.Context, eventLevel int, severity string, message string, vars ...any) {
	logger := GetLogger(ctx)
	if logger == nil {
		return
	}
	if len(vars) > 0 && strings.ContainsRune(message, '%') {
		message = fmt.Sprintf(message, vars...)
	}
	logger.log(eventLevel, severity, GetTagList(ctx), message)
}

// Blocks until every watcher has exited
func (logger *Logger) Wait() {
	logger.wg.Wait()
}

// Rouses waiting watchers so they notice Done
func (logger *Logger) Wake() {
	logger.mutex.Lock()
	logger.cond.Broadcast()
	logger.mutex.Unlock()
}
