package logctx

import (
	"ipfee/internal/global"
	"time"
)

func (logger *Logger) log(eventLevel int, severity string, tags []string, message string) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	if severity != global.ErrorLog && eventLevel > logger.PrintLevel {
		return
	}

	if logger.MaxQueued > 0 {
		if excess := len(logger.queue) + 1 - logger.MaxQueued; excess > 0 {
			logger.queue = logger.queue[excess:]
			logger.Dropped.Add(uint64(excess))
		}
	}
	logger.queue = append(logger.queue, Event{
		Timestamp: time.Now(),
		Severity:  severity,
		Tags:      tags,
		Message:   message,
	})
	logger.cond.Signal()
}

// Removes the oldest event, waiting while the buffer is empty.
// ok is false once Done is closed and the buffer has drained.
func (logger *Logger) next() (event Event, ok bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	for len(logger.queue) == 0 {
		select {
		case <-logger.Done:
			return
		default:
		}
		logger.cond.Wait()
	}

	event, logger.queue = logger.queue[0], logger.queue[1:]
	ok = true
	return
}
