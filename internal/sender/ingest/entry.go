// Reads newline-delimited JSON events (ingest source for the forward daemon)
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"ipfee/pkg/protocol"
)

// Longest accepted input line
const maxLineLen int = 64 * 1024

func New(namespace []string, name string, source io.Reader, out Submitter) (new *Reader) {
	ns := append(append([]string(nil), namespace...), global.NSIngest)
	new = &Reader{
		Namespace: ns,
		Name:      name,
		source:    source,
		out:       out,
	}
	return
}

// Reads until end of input or ctx is done. A clean end of input returns nil.
// Blank lines and lines starting with '#' are skipped; malformed lines are logged and skipped.
func (reader *Reader) Run(ctx context.Context) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSIngest)

	scanner := bufio.NewScanner(reader.source)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLen)

	var lineNumber int
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		lineNumber++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		reader.Metrics.Lines.Add(1)

		event, parseErr := protocol.ParseJSON(line)
		if parseErr != nil {
			reader.Metrics.Invalid.Add(1)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"%s line %d: %v\n", reader.Name, lineNumber, parseErr)
			continue
		}

		if reader.out.Submit(event) {
			reader.Metrics.Submitted.Add(1)
		} else {
			reader.Metrics.Rejected.Add(1)
		}
		logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
			"submitted %s\n", protocol.Format(event))
	}

	err = scanner.Err()
	if err != nil {
		err = fmt.Errorf("failed reading %s after line %d: %w", reader.Name, lineNumber, err)
		return
	}
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"reached end of %s after %d lines\n", reader.Name, lineNumber)
	return
}
