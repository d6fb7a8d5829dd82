package forwarder

import (
	"context"
	"fmt"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"ipfee/pkg/protocol"
)

// Launches the connection loop for address and returns immediately.
// Only the first call (per forwarder) has any effect; later calls are logged and ignored.
// The loop stops when ctx is cancelled or Shutdown is called.
func (fwd *Forwarder) Start(ctx context.Context, address string) (started bool) {
	if fwd == nil {
		return
	}
	ctx = logctx.AppendCtxTag(ctx, global.NSFwd)

	if !fwd.started.CompareAndSwap(false, true) {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"forwarder start called more than once, ignoring address %s\n", address)
		return
	}
	fwd.address.Store(&address)

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"connecting to collector at %s\n", address)

	loopCtx, cancel := context.WithCancel(ctx)
	stopOnShutdown := context.AfterFunc(fwd.stopCtx, cancel)

	fwd.state.Store(int32(StateConnecting))
	go func() {
		defer close(fwd.done)
		defer fwd.state.Store(int32(StateStopped))
		defer stopOnShutdown()
		defer cancel()

		fwd.run(loopCtx, address)
	}()

	started = true
	return
}

// Queues event for delivery without blocking.
// Events are discarded when the forwarder is not running or the queue is full; callers may ignore the result.
func (fwd *Forwarder) Submit(event protocol.Event) (queued bool) {
	if fwd == nil || event == nil {
		return
	}
	if !fwd.active() {
		fwd.Metrics.DroppedInactive.Add(1)
		return
	}

	// Pointers are copied so later changes by the caller never reach the wire
	event, err := protocol.Normalize(event)
	if err != nil {
		fwd.Metrics.SerializeErrors.Add(1)
		return
	}

	queued = fwd.queue.Push(event)
	if !queued {
		fwd.Metrics.DroppedFull.Add(1)
		return
	}
	fwd.Metrics.Submitted.Add(1)
	return
}

// Started, not shut down, and the loop has not exited
func (fwd *Forwarder) active() (running bool) {
	if !fwd.started.Load() || fwd.stopCtx.Err() != nil {
		return
	}
	select {
	case <-fwd.done:
	default:
		running = true
	}
	return
}

// Stops the loop and waits for it to exit (bounded by ctx).
// Events still queued are abandoned. A forwarder that was never started can no longer be started afterwards.
func (fwd *Forwarder) Shutdown(ctx context.Context) (err error) {
	if fwd == nil {
		return
	}
	fwd.stopLoop()

	if fwd.started.CompareAndSwap(false, true) {
		fwd.state.Store(int32(StateStopped))
		close(fwd.done)
		return
	}

	select {
	case <-fwd.done:
	case <-ctx.Done():
		err = fmt.Errorf("forwarder loop did not exit: %w", ctx.Err())
	}
	return
}

// Closed once the loop has exited
func (fwd *Forwarder) Done() (done <-chan struct{}) {
	done = fwd.done
	return
}

// Collector address given to the first Start, empty before that
func (fwd *Forwarder) Address() (address string) {
	if stored := fwd.address.Load(); stored != nil {
		address = *stored
	}
	return
}

// Events waiting in the queue
func (fwd *Forwarder) Pending() (count int) {
	count = fwd.queue.Len()
	return
}

// Current loop phase
func (fwd *Forwarder) State() (state State) {
	state = State(fwd.state.Load())
	return
}

func (state State) String() (text string) {
	switch state {
	case StateIdle:
		text = "idle"
	case StateConnecting:
		text = "connecting"
	case StateDraining:
		text = "draining"
	case StateStreaming:
		text = "streaming"
	case StateStopped:
		text = "stopped"
	default:
		text = fmt.Sprintf("state(%d)", int32(state))
	}
	return
}
