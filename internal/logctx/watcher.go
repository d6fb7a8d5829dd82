package logctx

import (
	"fmt"
	"io"
	"ipfee/internal/global"
	"strings"
	"time"
)

const (
	dedupWindow      = 5 * time.Second // repeats older than this count as new messages
	dedupThreshold   = 10              // repeats folded into one notice
	suppressCooldown = time.Minute     // minimum gap between notices
)

// Writes buffered events to output in a background goroutine until logger.Done is closed and the buffer is empty.
// Bursts of an identical message (reconnect failures) are folded into a periodic notice.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)
	go func() {
		defer logger.wg.Done()

		var dedup dedupState
		for {
			event, ok := logger.next()
			if !ok {
				return
			}
			line, write := dedup.admit(event, time.Now())
			if write {
				io.WriteString(output, line)
			}
		}
	}()
}

// Decides what (if anything) to write for event
func (state *dedupState) admit(event Event, now time.Time) (line string, write bool) {
	repeated := event.Message != "" &&
		event.Message == state.lastMsg &&
		now.Sub(event.Timestamp) <= dedupWindow
	if !repeated {
		state.lastMsg = event.Message
		state.repeats = 1
		line, write = event.Format(), true
		return
	}

	state.repeats++
	if state.repeats < dedupThreshold || now.Sub(state.lastSuppressed) < suppressCooldown {
		return
	}
	line = fmt.Sprintf("[%s] [%s] [%s] Suppressed %d repeated messages: %s",
		padTimestamp(event.Timestamp), strings.Join(event.Tags, "/"), global.InfoLog, state.repeats, state.lastMsg)
	write = true
	state.lastSuppressed = now
	state.repeats = 0
	return
}
