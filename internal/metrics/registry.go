// Time sliced storage for collected metrics
package metrics

import (
	"sort"
	"strings"
	"time"
)

func New() (new *Registry) {
	new = &Registry{}
	return
}

// Returns the slice start for now, creating the slice when missing
func (registry *Registry) NewTimeSlice(now time.Time, interval time.Duration) (sliceStart time.Time) {
	// Truncate leaves now as-is when interval <= 0
	sliceStart = now.Truncate(interval)

	registry.mu.Lock()
	defer registry.mu.Unlock()

	pos, found := registry.find(sliceStart)
	if found {
		return
	}
	registry.slices = append(registry.slices, timeSlice{})
	copy(registry.slices[pos+1:], registry.slices[pos:])
	registry.slices[pos] = timeSlice{
		start: sliceStart,
		index: make(map[seriesKey]int),
	}
	return
}

// Stores samples in an existing slice. A later sample for the same series replaces the earlier one.
func (registry *Registry) Add(sliceStart time.Time, samples []Metric) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	pos, found := registry.find(sliceStart)
	if !found {
		return
	}
	slice := &registry.slices[pos]

	for _, sample := range samples {
		key := seriesKey{namespace: strings.Join(sample.Namespace, "/"), name: sample.Name}
		existing, present := slice.index[key]
		if present {
			slice.samples[existing] = sample
			continue
		}
		slice.index[key] = len(slice.samples)
		slice.samples = append(slice.samples, sample)
	}
}

// Drops slices that started more than maxAge before currentTime
func (registry *Registry) Prune(currentTime time.Time, maxAge time.Duration) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	keep := sort.Search(len(registry.slices), func(i int) bool {
		return currentTime.Sub(registry.slices[i].start) <= maxAge
	})
	if keep == 0 {
		return
	}
	remaining := copy(registry.slices, registry.slices[keep:])
	clear(registry.slices[remaining:])
	registry.slices = registry.slices[:remaining]
}

// Position of the slice starting at sliceStart, or where it would be inserted. Caller holds the lock.
func (registry *Registry) find(sliceStart time.Time) (pos int, found bool) {
	pos = sort.Search(len(registry.slices), func(i int) bool {
		return !registry.slices[i].start.Before(sliceStart)
	})
	found = pos < len(registry.slices) && registry.slices[pos].start.Equal(sliceStart)
	return
}

// Slices whose start falls inside [start, end]; zero bounds are open. Caller holds the read lock.
func (registry *Registry) window(start, end time.Time) (slices []timeSlice) {
	first := 0
	if !start.IsZero() {
		first, _ = registry.find(start)
	}
	last := len(registry.slices)
	if !end.IsZero() {
		last = sort.Search(len(registry.slices), func(i int) bool {
			return registry.slices[i].start.After(end)
		})
	}
	if first >= last {
		return
	}
	slices = registry.slices[first:last]
	return
}
