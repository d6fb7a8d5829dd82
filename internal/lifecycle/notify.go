// Signal handling and service manager notifications shared by the forward and collect daemons
package lifecycle

import (
	"context"
	"fmt"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"net"
	"os"
)

const notifySocketEnv = "NOTIFY_SOCKET"

// Startup finished
func NotifyReady(ctx context.Context) (err error) {
	err = notify(ctx, "READY=1")
	return
}

// Shutdown has begun
func NotifyStopping(ctx context.Context) (err error) {
	err = notify(ctx, "STOPPING=1")
	return
}

// Free-form status line shown by systemctl status
func NotifyStatus(ctx context.Context, msg string) (err error) {
	err = notify(ctx, "STATUS="+msg)
	return
}

// Writes one sd_notify datagram. Not running under systemd (no socket in the environment) is not an error.
// Abstract sockets ("@name") are handled by the net package.
func notify(ctx context.Context, state string) (err error) {
	socket := os.Getenv(notifySocketEnv)
	if socket == "" {
		return
	}

	conn, err := net.Dial("unixgram", socket)
	if err != nil {
		err = fmt.Errorf("failed to reach service manager at %s: %w", socket, err)
		return
	}
	defer conn.Close()

	if _, err = conn.Write([]byte(state)); err != nil {
		err = fmt.Errorf("failed to send %q to service manager: %w", state, err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "service manager notified: %s\n", state)
	return
}
