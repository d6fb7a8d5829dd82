package lifecycle

import (
	"context"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"os"
	"os/signal"
	"syscall"
)

// Stoppable is a running daemon that can be told to stop and reports when it has
type Stoppable interface {
	Shutdown()
	Done() <-chan struct{}
}

var stopSignals = []os.Signal{syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM}

// Blocks until a stop signal arrives, the daemon exits by itself, or ctx ends.
// The daemon is always shut down before returning; received is nil unless a signal caused the stop.
func SignalHandler(ctx context.Context, daemon Stoppable) (received os.Signal) {
	received = awaitStop(ctx, daemon.Done())
	if received != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Stopping on signal %v\n", received)
	}

	if err := NotifyStopping(ctx); err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "failed to report stopping state: %v\n", err)
	}
	daemon.Shutdown()
	return
}

func awaitStop(ctx context.Context, finished <-chan struct{}) (received os.Signal) {
	incoming := make(chan os.Signal, 1)
	signal.Notify(incoming, stopSignals...)
	defer signal.Stop(incoming)

	select {
	case received = <-incoming:
	case <-finished:
	case <-ctx.Done():
	}
	return
}
