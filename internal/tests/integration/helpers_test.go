package integration

import (
	"context"
	"ipfee/internal/logctx"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"
)

// Reserves a loopback port nothing is listening on
func freePort(t *testing.T) (port int) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	port = listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return
}

// Polls cond until it holds or the timeout passes
func waitFor(t *testing.T, what string, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %v waiting for %s", timeout, what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var bracketed = regexp.MustCompile(`\[([^\]]*)\]`)

// Returns the first buffered log line carrying severity, a bracket group containing tag, and text.
// Empty criteria match anything.
func filterLogBuffer(ctx context.Context, text, tag, severity string) (line string, found bool) {
	logger := logctx.GetLogger(ctx)
	if logger == nil {
		return
	}

	for _, candidate := range logger.GetFormattedLogLines() {
		if text != "" && !strings.Contains(candidate, text) {
			continue
		}

		groups := bracketed.FindAllStringSubmatch(candidate, -1)
		tagged := tag == ""
		graded := severity == ""
		for _, group := range groups {
			tagged = tagged || strings.Contains(group[1], tag)
			graded = graded || group[1] == severity
		}
		if tagged && graded {
			line, found = candidate, true
			return
		}
	}
	return
}
