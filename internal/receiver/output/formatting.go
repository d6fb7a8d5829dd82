package output

import (
	"encoding/json"
	"fmt"
	"ipfee/pkg/protocol"
	"time"
)

// Formats a received event as one output line (with trailing newline)
func FormatLine(rec protocol.Received, format string) (line string, err error) {
	switch format {
	case FormatJSON:
		var jRecord protocol.JReceived
		jRecord, err = rec.ToJSON()
		if err != nil {
			return
		}
		var data []byte
		data, err = json.Marshal(jRecord)
		if err != nil {
			return
		}
		line = string(data) + "\n"
	case FormatText, "":
		line = FormatAsText(rec) + "\n"
	default:
		err = fmt.Errorf("unknown output format %q", format)
	}
	return
}

// Timestamp, peer, event
func FormatAsText(rec protocol.Received) (text string) {
	remote := rec.Remote
	if remote == "" {
		remote = "-"
	}
	text = rec.Received.Format(time.RFC3339Nano) + " " + remote + " " + protocol.Format(rec.Event)
	return
}
