package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Reads starttime/endtime query values.
// starttime: empty = last minute, relative ("-5m") or RFC3339. Unparseable relative values fall back to last minute.
// endtime: empty or "now" = now, otherwise RFC3339.
func parseWindow(clientRequest *http.Request, now time.Time) (start, end time.Time, err error) {
	rawStartTime := clientRequest.FormValue("starttime")
	switch {
	case rawStartTime == "":
		start = now.Add(-1 * time.Minute)
	case rawStartTime[0] == '-' || rawStartTime[0] == '+':
		dur, parseErr := time.ParseDuration(rawStartTime)
		if parseErr != nil {
			start = now.Add(-1 * time.Minute)
			break
		}
		if dur > 0 {
			err = fmt.Errorf("start time cannot be in the future")
			return
		}
		start = now.Add(dur)
	default:
		start, err = time.Parse(time.RFC3339Nano, rawStartTime)
		if err != nil {
			err = fmt.Errorf("invalid start time: %v", err)
			return
		}
	}

	rawEndTime := clientRequest.FormValue("endtime")
	if rawEndTime == "now" || rawEndTime == "" {
		end = now
	} else {
		end, err = time.Parse(time.RFC3339Nano, rawEndTime)
		if err != nil {
			err = fmt.Errorf("invalid end time: %v", err)
			return
		}
	}
	return
}

// Splits the URL path after prefix into a namespace (nil when empty)
func namespaceFromPath(path, prefix string) (namespace []string) {
	raw := strings.TrimPrefix(path, prefix)
	namespace = strings.FieldsFunc(raw, func(r rune) bool { return r == '/' })
	if len(namespace) == 0 {
		namespace = nil
	}
	return
}
