package bounded

import (
	"context"
	"ipfee/internal/atomics"
	"runtime"
)

// Attempts to write an element without blocking (non success = queue full, item dropped)
func (queue *Queue[T]) Push(value T) (success bool) {
	queue.Metrics.PushAttempts.Add(1)

	var pos, seq uint64
	var slot *cell[T]

	for {
		pos = queue.tail.Load()
		slot = &queue.buf[pos%queue.capacity]
		seq = slot.seq.Load()

		if seq == pos {
			if queue.tail.CompareAndSwap(pos, pos+1) {
				break
			}
		} else if seq < pos {
			queue.Metrics.PushFull.Add(1)
			return
		}
		// Lost a race with another producer
		runtime.Gosched()
	}

	slot.data = value
	slot.seq.Store(pos + 1)
	queue.Metrics.Depth.Add(1)
	queue.Metrics.PushSuccess.Add(1)

	// Wake a parked consumer, non-blocking
	select {
	case queue.notEmpty <- struct{}{}:
	default:
	}

	success = true
	return
}

// Reads the oldest element, blocking while the queue is empty.
// Only returns false once ctx is done; items already queued are still returned after cancellation.
func (queue *Queue[T]) Pop(ctx context.Context) (out T, success bool) {
	for {
		out, success = queue.TryPop()
		if success {
			return
		}

		queue.Metrics.PopWaits.Add(1)
		select {
		case <-ctx.Done():
			return
		case <-queue.notEmpty:
		}
	}
}

// Reads the oldest element if one is available
func (queue *Queue[T]) TryPop() (out T, success bool) {
	queue.Metrics.PopAttempts.Add(1)

	var pos, seq uint64
	var slot *cell[T]

	for {
		pos = queue.head.Load()
		slot = &queue.buf[pos%queue.capacity]
		seq = slot.seq.Load()

		if seq == pos+1 {
			if queue.head.CompareAndSwap(pos, pos+1) {
				break
			}
		} else if seq < pos+1 {
			// empty
			return
		}
		runtime.Gosched()
	}

	out = slot.data
	var zero T
	slot.data = zero // release references held by the slot
	slot.seq.Store(pos + queue.capacity)

	atomics.SubtractFloor(&queue.Metrics.Depth, 1)
	queue.Metrics.PopSuccess.Add(1)

	// Pass the wakeup on if more items remain for other consumers
	if queue.Len() > 0 {
		select {
		case queue.notEmpty <- struct{}{}:
		default:
		}
	}

	success = true
	return
}

// Removes up to count of the oldest items without blocking on an empty queue.
// A slot claimed by a push that has not finished writing is waited out, so every item counted by an earlier Len is removed.
// Stops early only when ctx is done. Single consumer only.
func (queue *Queue[T]) Discard(ctx context.Context, count int) (discarded int) {
	for discarded < count {
		if ctx.Err() != nil {
			return
		}
		_, ok := queue.TryPop()
		if !ok {
			runtime.Gosched()
			continue
		}
		discarded++
	}
	return
}

// Number of items currently queued (includes slots claimed by in-flight pushes)
func (queue *Queue[T]) Len() (length int) {
	head := queue.head.Load()
	tail := queue.tail.Load()
	if tail <= head {
		return
	}
	length = int(min(tail-head, queue.capacity))
	return
}

// Fixed maximum number of queued items
func (queue *Queue[T]) Cap() (capacity int) {
	capacity = int(queue.capacity)
	return
}
