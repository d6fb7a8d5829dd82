package forwarder

import (
	"context"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"ipfee/internal/network"
	"net"
	"time"
)

// Dials until a connection is made or ctx ends. No limit on attempts.
func (fwd *Forwarder) connect(ctx context.Context, address string) (conn net.Conn, ok bool) {
	fwd.state.Store(int32(StateConnecting))

	opts := network.DialOptions{
		Timeout:     fwd.cfg.DialTimeout,
		KeepAlive:   fwd.cfg.KeepAlive,
		UserTimeout: fwd.cfg.UserTimeout,
	}

	for {
		if ctx.Err() != nil {
			return
		}

		fwd.Metrics.ConnectAttempts.Add(1)
		tcpConn, err := network.DialTCP(ctx, address, opts)
		if err == nil {
			conn = tcpConn
			ok = true
			fwd.state.Store(int32(StateDraining))
			fwd.Metrics.Connects.Add(1)
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"connected to collector %s from %s\n", conn.RemoteAddr(), conn.LocalAddr())
			return
		}

		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"%v, retrying in %v\n", err, fwd.cfg.RetryInterval)

		retry := time.NewTimer(fwd.cfg.RetryInterval)
		select {
		case <-ctx.Done():
			retry.Stop()
			return
		case <-retry.C:
		}
	}
}
