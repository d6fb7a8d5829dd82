package forwarder

import (
	"context"
	"ipfee/internal/queue/bounded"
	"ipfee/pkg/protocol"
	"sync/atomic"
	"time"
)

// Tunables for the forwarder (zero values take defaults)
type Config struct {
	Capacity      int           // queued events before new submissions are dropped
	RetryInterval time.Duration // wait between failed connect attempts
	DialTimeout   time.Duration // per connect attempt
	WriteTimeout  time.Duration // per record write, 0 = block until the kernel gives up
	KeepAlive     time.Duration // TCP keepalive idle time, negative disables
	UserTimeout   time.Duration // TCP_USER_TIMEOUT, 0 = kernel default
}

// Ships events to a collector over a single persistent TCP connection.
// Create with New; the zero value is not usable.
type Forwarder struct {
	Namespace []string
	cfg       Config
	queue     *bounded.Queue[protocol.Event]
	address   atomic.Pointer[string]

	started  atomic.Bool  // set once by Start (or Shutdown if never started)
	state    atomic.Int32 // current loop State
	stopCtx  context.Context
	stopLoop context.CancelFunc
	done     chan struct{} // closed when the loop has exited

	Metrics *MetricStorage
}

// Connection loop phase
type State int32

const (
	StateIdle       State = iota // not started
	StateConnecting              // dialing or waiting to retry
	StateDraining                // discarding events queued before the connection went live
	StateStreaming               // writing events as they arrive
	StateStopped                 // loop exited
)

type MetricStorage struct {
	Submitted       atomic.Uint64 // accepted into the queue
	DroppedFull     atomic.Uint64 // rejected, queue at capacity
	DroppedInactive atomic.Uint64 // rejected, forwarder not started or shut down
	DroppedStale    atomic.Uint64 // discarded on (re)connect
	Sent            atomic.Uint64 // records fully written
	SentBytes       atomic.Uint64
	SerializeErrors atomic.Uint64
	WriteErrors     atomic.Uint64
	ConnectAttempts atomic.Uint64
	Connects        atomic.Uint64
}
