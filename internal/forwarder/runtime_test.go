package forwarder

import (
	"context"
	"ipfee/internal/network"
	"ipfee/pkg/protocol"
	"net"
	"testing"
	"time"
)

func TestForwarder_LateCollectorDiscardsBacklog(t *testing.T) {
	addr := closedAddr(t)

	cfg := testConfig()
	cfg.RetryInterval = 200 * time.Millisecond
	fwd := mustNew(t, cfg)
	fwd.Start(context.Background(), addr)

	for i := 0; i < 3; i++ {
		if !fwd.Submit(marker(i)) {
			t.Fatalf("submit %d not queued", i)
		}
	}

	time.Sleep(500 * time.Millisecond)
	if fwd.Metrics.ConnectAttempts.Load() < 2 {
		t.Fatalf("expected repeated connect attempts, got %d", fwd.Metrics.ConnectAttempts.Load())
	}
	if fwd.Pending() != 3 {
		t.Fatalf("expected 3 pending while disconnected, got %d", fwd.Pending())
	}

	listener, err := network.ListenTCP(context.Background(), addr)
	if err != nil {
		t.Fatalf("failed to listen on %s: %v", addr, err)
	}
	appeared := time.Now()
	conns := acceptAll(t, listener)

	conn := nextConn(t, conns)
	if waited := time.Since(appeared); waited > cfg.RetryInterval+time.Second {
		t.Fatalf("connection took %v after the collector appeared", waited)
	}
	waitStreaming(t, fwd, 1)

	if fwd.Metrics.DroppedStale.Load() != 3 {
		t.Fatalf("expected 3 stale events discarded, got %d", fwd.Metrics.DroppedStale.Load())
	}

	fwd.Submit(marker(10))
	events := readEvents(t, conn, protocol.NewDecoder(conn), 1)
	if events[0] != marker(10) {
		t.Fatalf("backlog leaked onto the connection: got %+v", events[0])
	}
}

func TestForwarder_ReconnectAfterCollectorLoss(t *testing.T) {
	listener, err := network.ListenTCP(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := listener.Addr().String()
	conns := acceptAll(t, listener)

	fwd := mustNew(t, testConfig())
	fwd.Start(context.Background(), addr)
	first := nextConn(t, conns)
	waitStreaming(t, fwd, 1)

	fwd.Submit(marker(0))
	events := readEvents(t, first, protocol.NewDecoder(first), 1)
	if events[0] != marker(0) {
		t.Fatalf("unexpected first event %+v", events[0])
	}

	// Kill the collector, then bring a new one up on the same address
	listener.Close()
	first.Close()
	listener, err = network.ListenTCP(context.Background(), addr)
	if err != nil {
		t.Fatalf("failed to relisten on %s: %v", addr, err)
	}
	conns = acceptAll(t, listener)

	// Writes are the only way the forwarder notices the loss
	filler := protocol.Fee{Signature: sig(0xAA)}
	waitFor(t, 5*time.Second, "reconnect", func() bool {
		fwd.Submit(filler)
		time.Sleep(10 * time.Millisecond)
		return fwd.Metrics.Connects.Load() >= 2
	})
	second := nextConn(t, conns)
	waitStreaming(t, fwd, 2)

	if fwd.Metrics.WriteErrors.Load() < 1 {
		t.Fatalf("expected a write error to trigger the reconnect")
	}

	const count = 10
	for i := 1; i <= count; i++ {
		fwd.Submit(marker(i))
	}

	// Filler that raced the drain may arrive first; markers must follow in order
	decoder := protocol.NewDecoder(second)
	second.SetReadDeadline(time.Now().Add(5 * time.Second))
	next := 1
	for next <= count {
		event, err := decoder.Decode()
		if err != nil {
			t.Fatalf("decode failed waiting for marker %d: %v", next, err)
		}
		if event == protocol.Event(filler) {
			if next > 1 {
				t.Fatalf("filler delivered after marker %d", next-1)
			}
			continue
		}
		if event != marker(next) {
			t.Fatalf("expected marker %d, got %+v", next, event)
		}
		next++
	}
}

func TestForwarder_WriteTimeout(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	conns := acceptAll(t, listener)

	cfg := testConfig()
	cfg.WriteTimeout = 50 * time.Millisecond
	fwd := mustNew(t, cfg)
	fwd.Start(context.Background(), listener.Addr().String())
	nextConn(t, conns) // never read, so the socket buffers eventually fill
	waitStreaming(t, fwd, 1)

	big := protocol.Fee{Signature: sig(0x44), CULimit: ^uint64(0), CUUsed: ^uint64(0), Fee: ^uint64(0)}
	waitFor(t, 20*time.Second, "write timeout", func() bool {
		for i := 0; i < 1000; i++ {
			fwd.Submit(big)
		}
		return fwd.Metrics.WriteErrors.Load() >= 1
	})
}

func TestForwarder_CollectMetrics(t *testing.T) {
	fwd := mustNew(t, testConfig())
	fwd.Submit(marker(0)) // inactive drop

	collected := fwd.CollectMetrics(time.Second)
	byName := make(map[string]uint64)
	for _, m := range collected {
		if v, ok := m.Value.Raw.(uint64); ok {
			byName[m.Name] = v
		}
	}

	for _, name := range []string{"state", "submitted", "dropped_full", "dropped_inactive", "dropped_stale",
		"sent", "sent_bytes", "serialize_errors", "write_errors", "connect_attempts", "connects", "depth", "capacity"} {
		if _, ok := byName[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if byName["dropped_inactive"] != 1 {
		t.Fatalf("expected 1 inactive drop, got %d", byName["dropped_inactive"])
	}

	// Counters reset on collection
	for _, m := range fwd.CollectMetrics(time.Second) {
		if m.Name == "dropped_inactive" && m.Value.Raw.(uint64) != 0 {
			t.Fatalf("counter not reset after collection")
		}
	}
}
