package forwarder

import (
	"context"
	"errors"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"ipfee/pkg/protocol"
	"net"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"defaults", Config{}, nil},
		{"custom", Config{Capacity: 64, RetryInterval: time.Millisecond}, nil},
		{"negative capacity", Config{Capacity: -1}, ErrInvalidCapacity},
		{"capacity too small for ring", Config{Capacity: 1}, ErrInvalidCapacity},
		{"negative retry", Config{RetryInterval: -time.Second}, ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, err := New(tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if fwd.State() != StateIdle {
				t.Fatalf("expected idle state, got %v", fwd.State())
			}
			if tt.cfg.Capacity == 0 && fwd.queue.Cap() != global.DefaultQueueCapacity {
				t.Fatalf("expected default capacity %d, got %d", global.DefaultQueueCapacity, fwd.queue.Cap())
			}
			if tt.cfg.RetryInterval == 0 && fwd.cfg.RetryInterval != global.DefaultConnectRetryInterval {
				t.Fatalf("expected default retry interval, got %v", fwd.cfg.RetryInterval)
			}
		})
	}
}

func TestForwarder_NilReceiver(t *testing.T) {
	var fwd *Forwarder
	if fwd.Submit(marker(0)) {
		t.Fatalf("submit on nil forwarder reported queued")
	}
	if fwd.Start(context.Background(), "127.0.0.1:1") {
		t.Fatalf("start on nil forwarder reported started")
	}
	if err := fwd.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown on nil forwarder returned %v", err)
	}
}

func TestForwarder_DeliversInOrder(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	conns := acceptAll(t, listener)

	fwd := mustNew(t, testConfig())
	if !fwd.Start(context.Background(), listener.Addr().String()) {
		t.Fatalf("first start was refused")
	}
	conn := nextConn(t, conns)
	waitStreaming(t, fwd, 1)

	const count = 200
	for i := 0; i < count; i++ {
		if !fwd.Submit(marker(i)) {
			t.Fatalf("submit %d was not queued", i)
		}
	}
	userTx := protocol.UserTx{IP: netip.MustParseAddr("2001:db8::1"), Signature: sig(0x01)}
	fwd.Submit(userTx)

	events := readEvents(t, conn, protocol.NewDecoder(conn), count+1)
	for i := 0; i < count; i++ {
		if events[i] != marker(i) {
			t.Fatalf("event %d out of order: got %+v", i, events[i])
		}
	}
	if events[count] != userTx {
		t.Fatalf("expected trailing user tx, got %+v", events[count])
	}

	waitFor(t, time.Second, "sent counter", func() bool { return fwd.Metrics.Sent.Load() == count+1 })
	if fwd.Metrics.Submitted.Load() != count+1 {
		t.Fatalf("expected %d submitted, got %d", count+1, fwd.Metrics.Submitted.Load())
	}
}

func TestForwarder_SubmitBeforeStart(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	conns := acceptAll(t, listener)

	fwd := mustNew(t, testConfig())
	for i := 0; i < 5; i++ {
		if fwd.Submit(marker(i)) {
			t.Fatalf("submit before start reported queued")
		}
	}
	if fwd.Pending() != 0 {
		t.Fatalf("expected nothing pending before start, got %d", fwd.Pending())
	}
	if fwd.Metrics.DroppedInactive.Load() != 5 {
		t.Fatalf("expected 5 inactive drops, got %d", fwd.Metrics.DroppedInactive.Load())
	}

	fwd.Start(context.Background(), listener.Addr().String())
	conn := nextConn(t, conns)
	waitStreaming(t, fwd, 1)

	fwd.Submit(marker(100))
	events := readEvents(t, conn, protocol.NewDecoder(conn), 1)
	if events[0] != marker(100) {
		t.Fatalf("expected first delivered event to be submitted after start, got %+v", events[0])
	}
}

func TestForwarder_SubmitAfterLoopExit(t *testing.T) {
	fwd := mustNew(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	fwd.Start(ctx, closedAddr(t))
	cancel()

	select {
	case <-fwd.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not exit after its context was cancelled")
	}

	if fwd.Submit(marker(1)) {
		t.Fatal("submit after loop exit reported queued")
	}
	if fwd.Pending() != 0 {
		t.Fatalf("expected nothing pending, got %d", fwd.Pending())
	}
	if fwd.Metrics.DroppedInactive.Load() != 1 {
		t.Fatalf("expected 1 inactive drop, got %d", fwd.Metrics.DroppedInactive.Load())
	}
	if fwd.Metrics.Submitted.Load() != 0 {
		t.Fatalf("expected no submissions counted, got %d", fwd.Metrics.Submitted.Load())
	}
}

func TestForwarder_SubmitPointerEvents(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	conns := acceptAll(t, listener)

	fwd := mustNew(t, testConfig())
	fwd.Start(context.Background(), listener.Addr().String())
	conn := nextConn(t, conns)
	waitStreaming(t, fwd, 1)

	if fwd.Submit((*protocol.Fee)(nil)) {
		t.Fatal("nil event pointer reported queued")
	}

	fee := marker(7)
	if !fwd.Submit(&fee) {
		t.Fatal("pointer event rejected")
	}
	fee.CUUsed = 99 // changes after submission are not sent

	events := readEvents(t, conn, protocol.NewDecoder(conn), 1)
	if events[0] != marker(7) {
		t.Fatalf("expected %+v, got %+v", marker(7), events[0])
	}
	if fwd.Metrics.SerializeErrors.Load() != 1 {
		t.Fatalf("expected 1 rejected event, got %d", fwd.Metrics.SerializeErrors.Load())
	}
}

func TestForwarder_SecondStartIgnored(t *testing.T) {
	first, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	conns := acceptAll(t, first)

	second, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer second.Close()

	done := make(chan struct{})
	defer close(done)
	ctx := logctx.New(context.Background(), global.NSTest, global.VerbosityStandard, done)

	fwd := mustNew(t, testConfig())
	if !fwd.Start(ctx, first.Addr().String()) {
		t.Fatalf("first start was refused")
	}
	nextConn(t, conns)
	waitStreaming(t, fwd, 1)

	if fwd.Start(ctx, second.Addr().String()) {
		t.Fatalf("second start reported started")
	}
	if fwd.Address() != first.Addr().String() {
		t.Fatalf("address changed to %s", fwd.Address())
	}

	second.(*net.TCPListener).SetDeadline(time.Now().Add(300 * time.Millisecond))
	if conn, err := second.Accept(); err == nil {
		conn.Close()
		t.Fatalf("second start opened a connection to the new address")
	}
	if fwd.Metrics.Connects.Load() != 1 {
		t.Fatalf("expected a single connection, got %d", fwd.Metrics.Connects.Load())
	}

	var logged bool
	for _, line := range logctx.GetLogger(ctx).GetFormattedLogLines() {
		if strings.Contains(line, "more than once") && strings.Contains(line, global.ErrorLog) {
			logged = true
		}
	}
	if !logged {
		t.Fatalf("redundant start was not logged as an error")
	}
}

func TestForwarder_FullQueueDropsNewest(t *testing.T) {
	fwd := mustNew(t, testConfig())
	fwd.Start(context.Background(), closedAddr(t))

	const capacity = global.DefaultQueueCapacity
	for i := 0; i < capacity; i++ {
		if !fwd.Submit(protocol.Fee{Signature: sig(0x02), CULimit: uint64(i)}) {
			t.Fatalf("submit %d rejected below capacity", i)
		}
	}

	start := time.Now()
	if fwd.Submit(protocol.Fee{Signature: sig(0x02), CULimit: uint64(capacity)}) {
		t.Fatalf("submit beyond capacity reported queued")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("submit on full queue took %v", elapsed)
	}
	if fwd.Pending() != capacity {
		t.Fatalf("expected %d pending, got %d", capacity, fwd.Pending())
	}
	if fwd.Metrics.DroppedFull.Load() != 1 {
		t.Fatalf("expected 1 full drop, got %d", fwd.Metrics.DroppedFull.Load())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fwd.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	// The earliest events are the ones retained
	for i := 0; i < capacity; i++ {
		event, ok := fwd.queue.TryPop()
		if !ok {
			t.Fatalf("queue ran dry at %d", i)
		}
		if fee := event.(protocol.Fee); fee.CULimit != uint64(i) {
			t.Fatalf("expected event %d, got %d", i, fee.CULimit)
		}
	}
}

func TestForwarder_SerializeErrorSkipsEvent(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	conns := acceptAll(t, listener)

	fwd := mustNew(t, testConfig())
	fwd.Start(context.Background(), listener.Addr().String())
	conn := nextConn(t, conns)
	waitStreaming(t, fwd, 1)

	fwd.Submit(protocol.UserTx{Signature: sig(0x03)}) // zero ip cannot be encoded
	fwd.Submit(marker(1))

	events := readEvents(t, conn, protocol.NewDecoder(conn), 1)
	if events[0] != marker(1) {
		t.Fatalf("expected event after the bad one, got %+v", events[0])
	}
	if fwd.Metrics.SerializeErrors.Load() != 1 {
		t.Fatalf("expected 1 serialize error, got %d", fwd.Metrics.SerializeErrors.Load())
	}
	if fwd.Metrics.Connects.Load() != 1 {
		t.Fatalf("serialize error caused a reconnect")
	}
}

func TestForwarder_ConcurrentProducers(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	conns := acceptAll(t, listener)

	fwd := mustNew(t, testConfig())
	fwd.Start(context.Background(), listener.Addr().String())
	conn := nextConn(t, conns)
	waitStreaming(t, fwd, 1)

	const producers = 4
	const perProducer = 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				fwd.Submit(protocol.Fee{Signature: sig(byte(id)), CUUsed: uint64(i)})
			}
		}(p)
	}
	wg.Wait()

	events := readEvents(t, conn, protocol.NewDecoder(conn), producers*perProducer)
	next := make([]uint64, producers)
	for _, event := range events {
		fee := event.(protocol.Fee)
		id := fee.Signature[0]
		if fee.CUUsed != next[id] {
			t.Fatalf("producer %d: expected %d, got %d", id, next[id], fee.CUUsed)
		}
		next[id]++
	}
}

func TestForwarder_Shutdown(t *testing.T) {
	t.Run("NeverStarted", func(t *testing.T) {
		fwd := mustNew(t, testConfig())
		if err := fwd.Shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown failed: %v", err)
		}
		if fwd.Start(context.Background(), closedAddr(t)) {
			t.Fatalf("start after shutdown reported started")
		}
		if fwd.Submit(marker(0)) {
			t.Fatalf("submit after shutdown reported queued")
		}
		if fwd.State() != StateStopped {
			t.Fatalf("expected stopped state, got %v", fwd.State())
		}
	})

	t.Run("WhileConnecting", func(t *testing.T) {
		fwd := mustNew(t, Config{RetryInterval: time.Hour})
		fwd.Start(context.Background(), closedAddr(t))
		waitFor(t, 2*time.Second, "first connect attempt", func() bool {
			return fwd.Metrics.ConnectAttempts.Load() >= 1
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := fwd.Shutdown(ctx); err != nil {
			t.Fatalf("shutdown failed: %v", err)
		}
		if fwd.State() != StateStopped {
			t.Fatalf("expected stopped state, got %v", fwd.State())
		}
		if fwd.Submit(marker(0)) {
			t.Fatalf("submit after shutdown reported queued")
		}
	})

	t.Run("WhileStreaming", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		conns := acceptAll(t, listener)

		fwd := mustNew(t, testConfig())
		fwd.Start(context.Background(), listener.Addr().String())
		nextConn(t, conns)
		waitStreaming(t, fwd, 1)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := fwd.Shutdown(ctx); err != nil {
			t.Fatalf("shutdown failed: %v", err)
		}
	})

	t.Run("ParentContextCancelled", func(t *testing.T) {
		fwd := mustNew(t, testConfig())
		ctx, cancel := context.WithCancel(context.Background())
		fwd.Start(ctx, closedAddr(t))
		cancel()

		select {
		case <-fwd.Done():
		case <-time.After(2 * time.Second):
			t.Fatalf("loop did not exit after context cancellation")
		}
	})
}
