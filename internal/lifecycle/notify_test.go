package lifecycle

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestNotify(t *testing.T) {
	tests := []struct {
		name    string
		send    func(ctx context.Context) error
		wantMsg string
	}{
		{"ready", NotifyReady, "READY=1"},
		{"stopping", NotifyStopping, "STOPPING=1"},
		{"status", func(ctx context.Context) error { return NotifyStatus(ctx, "forwarding") }, "STATUS=forwarding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sockPath := filepath.Join(t.TempDir(), "notify.sock")
			listener, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: sockPath, Net: "unixgram"})
			if err != nil {
				t.Fatalf("failed to create notify socket: %v", err)
			}
			defer listener.Close()
			t.Setenv("NOTIFY_SOCKET", sockPath)

			if err := tt.send(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			buf := make([]byte, 256)
			listener.SetReadDeadline(time.Now().Add(2 * time.Second))
			n, _, err := listener.ReadFromUnix(buf)
			if err != nil {
				t.Fatalf("failed reading notify message: %v", err)
			}
			if string(buf[:n]) != tt.wantMsg {
				t.Fatalf("expected %q, got %q", tt.wantMsg, buf[:n])
			}
		})
	}
}

func TestNotify_NoSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	if err := NotifyReady(context.Background()); err != nil {
		t.Fatalf("expected no-op without NOTIFY_SOCKET, got %v", err)
	}
}

func TestNotify_AbstractSocket(t *testing.T) {
	name := "@ipfee-notify-" + filepath.Base(t.TempDir())
	listener, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: name, Net: "unixgram"})
	if err != nil {
		t.Skipf("abstract sockets unavailable: %v", err)
	}
	defer listener.Close()
	t.Setenv("NOTIFY_SOCKET", name)

	if err := NotifyStatus(context.Background(), "listening on 127.0.0.1:8515"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf := make([]byte, 256)
	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := listener.ReadFromUnix(buf)
	if err != nil {
		t.Fatalf("failed reading notify message: %v", err)
	}
	if string(buf[:n]) != "STATUS=listening on 127.0.0.1:8515" {
		t.Fatalf("unexpected message %q", buf[:n])
	}
}

func TestNotify_MissingSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", filepath.Join(t.TempDir(), "absent.sock"))
	if err := NotifyReady(context.Background()); err == nil {
		t.Fatalf("expected error for missing socket")
	}
}

type fakeDaemon struct {
	done     chan struct{}
	shutdown chan struct{}
}

func (daemon *fakeDaemon) Shutdown()             { close(daemon.shutdown) }
func (daemon *fakeDaemon) Done() <-chan struct{} { return daemon.done }

func TestSignalHandler(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	t.Run("DaemonFinished", func(t *testing.T) {
		daemon := &fakeDaemon{done: make(chan struct{}), shutdown: make(chan struct{})}
		close(daemon.done)

		if sig := SignalHandler(context.Background(), daemon); sig != nil {
			t.Fatalf("expected no signal, got %v", sig)
		}
		select {
		case <-daemon.shutdown:
		default:
			t.Fatalf("daemon was not shut down")
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		daemon := &fakeDaemon{done: make(chan struct{}), shutdown: make(chan struct{})}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		SignalHandler(ctx, daemon)
		select {
		case <-daemon.shutdown:
		default:
			t.Fatalf("daemon was not shut down")
		}
	})

	t.Run("Signal", func(t *testing.T) {
		daemon := &fakeDaemon{done: make(chan struct{}), shutdown: make(chan struct{})}

		// Catch strays so the default action never kills the test binary
		guard := make(chan os.Signal, 16)
		signal.Notify(guard, syscall.SIGQUIT)
		defer signal.Stop(guard)

		result := make(chan os.Signal, 1)
		go func() {
			result <- SignalHandler(context.Background(), daemon)
		}()

		// Keep signalling until the handler has registered and returned
		deadline := time.After(5 * time.Second)
		for {
			syscall.Kill(syscall.Getpid(), syscall.SIGQUIT)
			select {
			case sig := <-result:
				if sig != syscall.SIGQUIT {
					t.Fatalf("expected SIGQUIT, got %v", sig)
				}
				<-daemon.shutdown
				return
			case <-time.After(20 * time.Millisecond):
			case <-deadline:
				t.Fatalf("signal handler never returned")
			}
		}
	})
}
