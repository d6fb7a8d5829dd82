package beats

import (
	"fmt"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Creates new beats (lumberjack) output module. Returns nil nil if no endpoint.
func NewOutput(endpoint string, timeout time.Duration) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	ljClient, err := lumberjack.SyncDial(endpoint,
		lumberjack.CompressionLevel(0),
		lumberjack.Timeout(timeout))
	if err != nil {
		err = fmt.Errorf("failed connection to beats server: %w", err)
		return
	}

	module = &OutModule{
		sink: ljClient,
	}
	return
}

// Closes the connection to the beats server
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil || mod.sink == nil {
		return
	}
	err = mod.sink.Close()
	return
}
