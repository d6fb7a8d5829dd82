package atomics

import "sync/atomic"

// Lowers source by value without wrapping below zero and returns the stored result
func SubtractFloor(source *atomic.Uint64, value uint64) (result uint64) {
	for {
		current := source.Load()
		result = current - min(value, current)
		if result == current || source.CompareAndSwap(current, result) {
			return
		}
	}
}
