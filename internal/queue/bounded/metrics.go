package bounded

import (
	"ipfee/internal/metrics"
	"time"
)

func (queue *Queue[T]) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()

	// Helper to add metrics
	add := func(name string, raw uint64, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   queue.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     "count",
				Interval: interval,
			},
		})
	}

	add("depth", queue.Metrics.Depth.Load(), metrics.Gauge, "Current number of events in the queue")
	add("capacity", queue.capacity, metrics.Gauge, "Maximum number of events the queue holds")
	add("push_attempts", queue.Metrics.PushAttempts.Swap(0), metrics.Counter, "Total push attempts in the interval")
	add("push_success", queue.Metrics.PushSuccess.Swap(0), metrics.Counter, "Total pushes stored in the interval")
	add("push_full", queue.Metrics.PushFull.Swap(0), metrics.Counter, "Total pushes rejected by a full queue in the interval")
	add("pop_attempts", queue.Metrics.PopAttempts.Swap(0), metrics.Counter, "Total pop attempts in the interval")
	add("pop_success", queue.Metrics.PopSuccess.Swap(0), metrics.Counter, "Total pops that returned an event in the interval")
	add("pop_waits", queue.Metrics.PopWaits.Swap(0), metrics.Counter, "Times a consumer waited on an empty queue in the interval")
	return
}
