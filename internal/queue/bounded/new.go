// Bounded lock-free ring buffer queue (any capacity >= 2) with non-blocking producers
package bounded

import (
	"errors"
	"fmt"
	"ipfee/internal/global"
	"unsafe"

	"github.com/pbnjay/memory"
)

var (
	ErrCapacityTooSmall = errors.New("capacity must be greater than or equal to 2")
	ErrInsufficientMem  = errors.New("not enough free system memory for queue")
)

// Creates a new queue holding at most capacity items
func New[T any](namespace []string, capacity int) (new *Queue[T], err error) {
	if capacity < 2 {
		err = fmt.Errorf("%w: got %d", ErrCapacityTooSmall, capacity)
		return
	}

	// Refuse absurd capacities up front instead of failing inside make()
	var slot cell[T]
	required := uint64(unsafe.Sizeof(slot)) * uint64(capacity)
	availMem := memory.FreeMemory()
	if availMem > 0 && required > availMem {
		err = fmt.Errorf("%w: need %d bytes, %d available", ErrInsufficientMem, required, availMem)
		return
	}

	buf := make([]cell[T], capacity)
	for i := range buf {
		buf[i].seq.Store(uint64(i))
	}

	ns := make([]string, 0, len(namespace)+1)
	ns = append(ns, namespace...)
	ns = append(ns, global.NSQueue)

	new = &Queue[T]{
		Namespace: ns,
		capacity:  uint64(capacity),
		buf:       buf,
		notEmpty:  make(chan struct{}, 1),
		Metrics:   &MetricStorage{},
	}
	return
}
