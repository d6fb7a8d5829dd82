package bounded

import "sync/atomic"

type cell[T any] struct {
	seq  atomic.Uint64
	data T
}

// Fixed capacity multi-producer ring.
// Producers never block; a full ring rejects the new item and keeps everything already queued.
type Queue[T any] struct {
	Namespace []string
	capacity  uint64
	buf       []cell[T]
	head      atomic.Uint64 // next position to read
	tail      atomic.Uint64 // next position to write
	notEmpty  chan struct{}
	Metrics   *MetricStorage
}

type MetricStorage struct {
	Depth atomic.Uint64 // Current items in queue

	PushAttempts atomic.Uint64 // every Push call
	PushSuccess  atomic.Uint64 // item stored
	PushFull     atomic.Uint64 // item rejected, queue at capacity

	PopAttempts atomic.Uint64 // every Pop/TryPop call
	PopSuccess  atomic.Uint64 // item returned
	PopWaits    atomic.Uint64 // consumer parked on an empty queue
}
