package forwarder

import (
	"context"
	"ipfee/pkg/protocol"
	"net"
	"testing"
	"time"
)

func testConfig() (cfg Config) {
	cfg = Config{
		RetryInterval: 50 * time.Millisecond,
		DialTimeout:   time.Second,
	}
	return
}

func mustNew(t *testing.T, cfg Config) (fwd *Forwarder) {
	t.Helper()
	fwd, err := New(cfg)
	if err != nil {
		t.Fatalf("expected no error creating forwarder, got '%v'", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fwd.Shutdown(ctx)
	})
	return
}

// Address nothing is listening on
func closedAddr(t *testing.T) (addr string) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	addr = listener.Addr().String()
	listener.Close()
	return
}

// Accepts connections in the background, handing each one over on the returned channel
func acceptAll(t *testing.T, listener net.Listener) (conns <-chan net.Conn) {
	t.Helper()
	ch := make(chan net.Conn, 8)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			ch <- conn
		}
	}()
	t.Cleanup(func() { listener.Close() })
	conns = ch
	return
}

func nextConn(t *testing.T, conns <-chan net.Conn) (conn net.Conn) {
	t.Helper()
	select {
	case conn = <-conns:
		t.Cleanup(func() { conn.Close() })
	case <-time.After(5 * time.Second):
		t.Fatalf("no connection from forwarder")
	}
	return
}

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %v waiting for %s", timeout, what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitStreaming(t *testing.T, fwd *Forwarder, connects uint64) {
	t.Helper()
	waitFor(t, 5*time.Second, "forwarder to stream", func() bool {
		return fwd.Metrics.Connects.Load() >= connects && fwd.State() == StateStreaming
	})
}

func sig(b byte) (s protocol.Signature) {
	for i := range s {
		s[i] = b
	}
	return
}

func marker(i int) (event protocol.Fee) {
	event = protocol.Fee{Signature: sig(0xBB), CULimit: 1_400_000, CUUsed: uint64(i), Fee: 5000}
	return
}

func readEvents(t *testing.T, conn net.Conn, decoder *protocol.Decoder, count int) (events []protocol.Event) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for len(events) < count {
		event, err := decoder.Decode()
		if err != nil {
			t.Fatalf("after %d events: decode failed: %v", len(events), err)
		}
		events = append(events, event)
	}
	return
}
