package logctx

import (
	"slices"
	"strings"
)

// Copy of the unwritten events as lines, oldest first and unstamped last, each ending in a newline
func (logger *Logger) GetFormattedLogLines() (formatted []string) {
	logger.mutex.Lock()
	events := slices.Clone(logger.queue)
	logger.mutex.Unlock()

	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.Timestamp.IsZero() && b.Timestamp.IsZero():
			return 0
		case a.Timestamp.IsZero():
			return 1
		case b.Timestamp.IsZero():
			return -1
		}
		return a.Timestamp.Compare(b.Timestamp)
	})

	formatted = make([]string, len(events))
	for i, event := range events {
		line := event.Format()
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		formatted[i] = line
	}
	return
}
