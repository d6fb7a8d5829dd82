package forwarder

import (
	"ipfee/internal/metrics"
	"time"
)

// Forwarder counters for the interval plus the queue's own metrics
func (fwd *Forwarder) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()

	add := func(name string, raw uint64, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   fwd.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("state", uint64(fwd.State()), "enum", metrics.Gauge, "Loop phase (0 idle, 1 connecting, 2 draining, 3 streaming, 4 stopped)")
	add("submitted", fwd.Metrics.Submitted.Swap(0), "count", metrics.Counter, "Events accepted into the queue")
	add("dropped_full", fwd.Metrics.DroppedFull.Swap(0), "count", metrics.Counter, "Events rejected because the queue was full")
	add("dropped_inactive", fwd.Metrics.DroppedInactive.Swap(0), "count", metrics.Counter, "Events rejected because the forwarder was not running")
	add("dropped_stale", fwd.Metrics.DroppedStale.Swap(0), "count", metrics.Counter, "Events discarded when a connection was (re)established")
	add("sent", fwd.Metrics.Sent.Swap(0), "count", metrics.Counter, "Events written to the collector")
	add("sent_bytes", fwd.Metrics.SentBytes.Swap(0), "bytes", metrics.Counter, "Bytes written to the collector")
	add("serialize_errors", fwd.Metrics.SerializeErrors.Swap(0), "count", metrics.Counter, "Events dropped because they could not be encoded")
	add("write_errors", fwd.Metrics.WriteErrors.Swap(0), "count", metrics.Counter, "Failed writes, each followed by a reconnect")
	add("connect_attempts", fwd.Metrics.ConnectAttempts.Swap(0), "count", metrics.Counter, "Dial attempts")
	add("connects", fwd.Metrics.Connects.Swap(0), "count", metrics.Counter, "Successful connections")

	collection = append(collection, fwd.queue.CollectMetrics(interval)...)
	return
}
