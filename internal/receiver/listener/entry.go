// Accepts forwarder connections and decodes their event streams into the output queue
package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"ipfee/internal/network"
	"ipfee/internal/queue/bounded"
	"ipfee/pkg/protocol"
	"net"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"
)

// Creates new listener instance bound to address
func New(ctx context.Context, namespace []string, address string, maxConns int, idleTimeout time.Duration, outbox *bounded.Queue[protocol.Received]) (new *Instance, err error) {
	socket, err := network.ListenTCP(ctx, address)
	if err != nil {
		err = fmt.Errorf("failed to create listener: %w", err)
		return
	}

	new = &Instance{
		Namespace:   append(append([]string(nil), namespace...), global.NSListen),
		listener:    socket,
		maxConns:    maxConns,
		idleTimeout: idleTimeout,
		Outbox:      outbox,
	}
	return
}

// Bound listen address
func (instance *Instance) Addr() (addr net.Addr) {
	addr = instance.listener.Addr()
	return
}

// Accepts connections until ctx is done, then closes every open connection and waits for handlers
func (instance *Instance) Run(ctx context.Context) (err error) {
	group, groupCtx := errgroup.WithContext(ctx)
	if instance.maxConns > 0 {
		group.SetLimit(instance.maxConns)
	}

	stopAccept := context.AfterFunc(ctx, func() { instance.listener.Close() })
	defer stopAccept()

	for {
		var conn net.Conn
		conn, err = instance.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				err = nil
				break
			}
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "accept failed: %v\n", err)
			continue
		}

		handled := group.TryGo(func() error {
			instance.handle(groupCtx, conn)
			return nil
		})
		if !handled {
			instance.Metrics.Rejected.Add(1)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"connection limit %d reached, refusing %s\n", instance.maxConns, conn.RemoteAddr())
			conn.Close()
			continue
		}
		instance.Metrics.Accepted.Add(1)
	}

	groupErr := group.Wait()
	if err == nil {
		err = groupErr
	}
	return
}

// Decodes one connection's stream until EOF, error or cancellation
func (instance *Instance) handle(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	ctx = logctx.AppendCtxTag(ctx, global.NSConn)

	instance.Metrics.Active.Add(1)
	defer instance.Metrics.Active.Add(^uint64(0))

	closeOnCancel := context.AfterFunc(ctx, func() { conn.Close() })
	defer closeOnCancel()
	defer conn.Close()

	// Record panics and drop the connection
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in connection handler for %s: %v\n%s", remote, fatalError, stack)
		}
	}()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "forwarder connected from %s\n", remote)

	decoder := protocol.NewDecoder(conn)
	var lastOffset uint64
	for {
		if instance.idleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(instance.idleTimeout))
		}

		event, err := decoder.Decode()

		offset := decoder.Offset()
		instance.Metrics.BytesRead.Add(offset - lastOffset)
		lastOffset = offset

		if err != nil {
			switch {
			case err == io.EOF:
				logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
					"forwarder %s disconnected\n", remote)
			case ctx.Err() != nil:
			case errors.Is(err, protocol.ErrUnknownVariant), errors.Is(err, protocol.ErrInvalidVarint), errors.Is(err, protocol.ErrInvalidIP):
				// Records carry no framing so nothing after a bad one can be trusted
				instance.Metrics.DecodeErrors.Add(1)
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"closing connection from %s after undecodable record at offset %d: %v\n", remote, offset, err)
			default:
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"connection from %s ended: %v\n", remote, err)
			}
			return
		}

		instance.Metrics.Events.Add(1)
		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog, "received %s\n", protocol.Format(event))

		queued := instance.Outbox.Push(protocol.Received{
			Event:    event,
			Remote:   remote,
			Received: time.Now(),
		})
		if !queued {
			instance.Metrics.QueueFullDrops.Add(1)
		}
	}
}

// Stops accepting without waiting for handlers
func (instance *Instance) Close() (err error) {
	err = instance.listener.Close()
	return
}
