package metrics

import (
	"testing"
	"time"
)

var (
	forwarderNS = []string{"Forwarder"}
	queueNS     = []string{"Forwarder", "Queue"}
)

func seriesSample(namespace []string, name, unit string, metricType MetricType, raw uint64, at time.Time) (metric Metric) {
	metric = Metric{
		Name:        name,
		Description: descriptions[name],
		Namespace:   namespace,
		Type:        metricType,
		Timestamp:   at,
		Value:       MetricValue{Raw: raw, Unit: unit, Interval: 30 * time.Second},
	}
	return
}

var descriptions = map[string]string{
	"state":         "Loop phase (0 idle, 1 connecting, 2 draining, 3 streaming, 4 stopped)",
	"connects":      "Successful connections",
	"dropped_stale": "Events discarded when a connection was (re)established",
	"depth":         "Current number of events in the queue",
	"push_full":     "Total pushes rejected by a full queue in the interval",
}

// One interval of what a sending forwarder reports
type forwarderInterval struct {
	state, connects, droppedStale uint64
	depth, pushFull               uint64
}

// Three intervals of a forwarder: collector down while events pile up,
// connected with the backlog discarded, then a burst beyond capacity.
func forwarderRegistry(t *testing.T) (registry *Registry, slices []time.Time) {
	t.Helper()

	registry = New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	history := []forwarderInterval{
		{state: 1, depth: 120},
		{state: 3, connects: 1, droppedStale: 120},
		{state: 3, depth: 10000, pushFull: 35},
	}

	for i, step := range history {
		at := registry.NewTimeSlice(base.Add(time.Duration(i)*30*time.Second), 30*time.Second)
		registry.Add(at, []Metric{
			seriesSample(forwarderNS, "state", "enum", Gauge, step.state, at),
			seriesSample(forwarderNS, "connects", "count", Counter, step.connects, at),
			seriesSample(forwarderNS, "dropped_stale", "count", Counter, step.droppedStale, at),
			seriesSample(queueNS, "depth", "count", Gauge, step.depth, at),
			seriesSample(queueNS, "push_full", "count", Counter, step.pushFull, at),
		})
		slices = append(slices, at)
	}
	return
}
