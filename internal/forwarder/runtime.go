package forwarder

import (
	"context"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"ipfee/pkg/protocol"
	"net"
	"time"
)

// Connection loop: connect, discard stale events, stream until a write fails, repeat
func (fwd *Forwarder) run(ctx context.Context, address string) {
	for {
		conn, ok := fwd.connect(ctx, address)
		if !ok {
			break
		}
		if ctx.Err() != nil {
			conn.Close()
			break
		}

		fwd.drain(ctx)

		err := fwd.stream(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			break
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"collector connection failed: %v, re-connecting\n", err)
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"forwarder stopped with %d events pending\n", fwd.queue.Len())
}

// Throws away everything queued before the connection went live.
// Only the snapshot taken on entry is removed; events submitted meanwhile are kept.
func (fwd *Forwarder) drain(ctx context.Context) (discarded int) {
	discarded = fwd.queue.Discard(ctx, fwd.queue.Len())
	fwd.Metrics.DroppedStale.Add(uint64(discarded))
	fwd.state.Store(int32(StateStreaming))

	if discarded > 0 {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"discarded %d events queued while disconnected\n", discarded)
	}
	return
}

// Writes events in queue order until ctx ends or a write fails
func (fwd *Forwarder) stream(ctx context.Context, conn net.Conn) (err error) {
	record := make([]byte, 0, protocol.MaxRecordLen)

	for {
		event, ok := fwd.queue.Pop(ctx)
		if !ok {
			if ctx.Err() != nil {
				err = ctx.Err()
				return
			}
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"forwarder queue returned no event without cancellation\n")
			panic("forwarder queue failure")
		}
		if ctx.Err() != nil {
			err = ctx.Err()
			return
		}

		var encErr error
		record, encErr = protocol.AppendEncoded(record[:0], event)
		if encErr != nil {
			fwd.Metrics.SerializeErrors.Add(1)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"failed to serialize event: %v\n", encErr)
			continue
		}

		if fwd.cfg.WriteTimeout > 0 {
			err = conn.SetWriteDeadline(time.Now().Add(fwd.cfg.WriteTimeout))
			if err != nil {
				fwd.Metrics.WriteErrors.Add(1)
				return
			}
		}

		// net.Conn writes the whole buffer or returns an error
		_, err = conn.Write(record)
		if err != nil {
			fwd.Metrics.WriteErrors.Add(1)
			return
		}

		fwd.Metrics.Sent.Add(1)
		fwd.Metrics.SentBytes.Add(uint64(len(record)))

		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"sent %s\n", protocol.Format(event))
	}
}
