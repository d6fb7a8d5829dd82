package logctx

import (
	"strings"
	"time"
)

// RFC3339 with all nine fraction digits so log columns line up
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// "[time] [tag/tag] [severity] message", leaving out whatever is unset
func (event Event) Format() (text string) {
	var line strings.Builder
	field := func(value string) {
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(value)
	}

	if !event.Timestamp.IsZero() {
		field("[" + padTimestamp(event.Timestamp) + "]")
	}
	if len(event.Tags) > 0 {
		field("[" + strings.Join(event.Tags, "/") + "]")
	}
	if event.Severity != "" {
		field("[" + event.Severity + "]")
	}
	if event.Message != "" {
		field(event.Message)
	}
	text = line.String()
	return
}

func padTimestamp(timestamp time.Time) (formatted string) {
	formatted = timestamp.Format(timestampLayout)
	return
}
