package network

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Socket tuning for outbound collector connections
type DialOptions struct {
	Timeout     time.Duration // connect timeout, 0 = no timeout beyond ctx
	KeepAlive   time.Duration // idle time before keepalives start, 0 = kernel default, negative = disabled
	UserTimeout time.Duration // max time unacknowledged data may sit in the send buffer before the kernel drops the connection, 0 = kernel default
}

// Opens a TCP connection to address, applying keepalive and user timeout socket options
func DialTCP(ctx context.Context, address string, opts DialOptions) (conn *net.TCPConn, err error) {
	dialer := net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: opts.KeepAlive,
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if opts.UserTimeout <= 0 {
					return
				}
				// Using x/sys/unix package for more up-to-date syscall numbers
				sockErr = unix.SetsockoptInt(
					int(fd),
					unix.IPPROTO_TCP,
					unix.TCP_USER_TIMEOUT,
					int(opts.UserTimeout.Milliseconds()),
				)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	rawConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		err = fmt.Errorf("failed to connect to %s: %w", address, err)
		return
	}

	conn, ok := rawConn.(*net.TCPConn)
	if !ok {
		rawConn.Close()
		err = fmt.Errorf("unexpected connection type %T for %s", rawConn, address)
		return
	}

	// Records are small; coalescing would only delay them
	err = conn.SetNoDelay(true)
	if err != nil {
		conn.Close()
		conn = nil
		err = fmt.Errorf("failed to disable nagle on connection to %s: %w", address, err)
		return
	}
	return
}

// Creates new TCP listener that can rebind immediately after a restart
func ListenTCP(ctx context.Context, addr string) (listener net.Listener, err error) {
	cfg := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				// Allow rebinding while old connections sit in TIME_WAIT
				sockErr = unix.SetsockoptInt(
					int(fd),
					unix.SOL_SOCKET,
					unix.SO_REUSEADDR,
					1,
				)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	listener, err = cfg.Listen(ctx, "tcp", addr)
	if err != nil {
		err = fmt.Errorf("failed to listen on tcp address %s: %w", addr, err)
		return
	}
	return
}
