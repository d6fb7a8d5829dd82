// Helpers around lock-free counters
package atomics

import (
	"context"
	"time"
)

const (
	zeroStreak  = 3 // consecutive zero readings before a counter counts as settled
	firstPoll   = 10 * time.Millisecond
	maxPollWait = 500 * time.Millisecond
)

// Polls load with growing gaps until it reads zero several times running, timeout passes or ctx ends.
// Any counter can be watched (queue depth, in-flight writes); lastValue is the final reading.
func WaitUntilZero(ctx context.Context, load func() uint64, timeout time.Duration) (reachedZero bool, lastValue uint64) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := firstPoll
	var zeros int
	for {
		lastValue = load()
		if lastValue == 0 {
			zeros++
		} else {
			zeros = 0
		}
		if zeros >= zeroStreak {
			reachedZero = true
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		wait = min(2*wait, maxPollWait)
	}
}
