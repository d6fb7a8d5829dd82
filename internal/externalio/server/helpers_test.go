package server

import (
	"context"
	"encoding/json"
	"ipfee/internal/forwarder"
	"ipfee/internal/metrics"
	"ipfee/pkg/protocol"
	"net"
	"net/http/httptest"
	"testing"
	"time"
)

// Registry holding one gathered interval from a forwarder that cannot reach its collector.
// Three events were offered before start and six after, against a queue of four.
func forwarderRegistry(t *testing.T) (registry *metrics.Registry) {
	t.Helper()

	fwd, err := forwarder.New(forwarder.Config{Capacity: 4, RetryInterval: time.Hour})
	if err != nil {
		t.Fatalf("failed to create forwarder: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fwd.Shutdown(ctx)
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	for i := 0; i < 3; i++ {
		fwd.Submit(protocol.Fee{CUUsed: uint64(i)})
	}
	fwd.Start(context.Background(), addr)
	for i := 0; i < 6; i++ {
		fwd.Submit(protocol.Fee{CUUsed: uint64(i)})
	}

	gatherer := metrics.NewGatherer(time.Second, time.Hour, fwd)
	gatherer.Gather(context.Background(), time.Now())
	registry = gatherer.Registry
	return
}

func decodeMetrics(t *testing.T, rr *httptest.ResponseRecorder) (found []metrics.JMetric) {
	t.Helper()
	err := json.NewDecoder(rr.Body).Decode(&found)
	if err != nil {
		t.Fatalf("expected metric array, decode failed: %v", err)
	}
	return
}

func decodeAggregate(t *testing.T, rr *httptest.ResponseRecorder) (found metrics.JMetric) {
	t.Helper()
	err := json.NewDecoder(rr.Body).Decode(&found)
	if err != nil {
		t.Fatalf("expected metric object, decode failed: %v", err)
	}
	return
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) (msg string) {
	t.Helper()
	var jErr Jerror
	err := json.NewDecoder(rr.Body).Decode(&jErr)
	if err != nil {
		t.Fatalf("expected error object, decode failed: %v", err)
	}
	if jErr.Msg == "" {
		t.Fatal("expected non-empty error message")
	}
	msg = jErr.Msg
	return
}

// Registry stand-in remembering the last query
type stubRegistry struct {
	lastFunction  string
	lastName      string
	lastNamespace []string
	lastStart     time.Time
	lastEnd       time.Time
}

func (stub *stubRegistry) Search(name string, namespacePrefix []string, start, end time.Time) []metrics.Metric {
	stub.lastName, stub.lastNamespace, stub.lastStart, stub.lastEnd = name, namespacePrefix, start, end
	return nil
}

func (stub *stubRegistry) Aggregate(function, name string, namespacePrefix []string, start, end time.Time) (metrics.Metric, error) {
	stub.lastFunction = function
	stub.lastName, stub.lastNamespace, stub.lastStart, stub.lastEnd = name, namespacePrefix, start, end
	return metrics.Metric{}, nil
}
