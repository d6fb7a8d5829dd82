package listener

import (
	"ipfee/internal/metrics"
	"time"
)

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()

	add := func(name string, raw uint64, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   instance.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("active_connections", instance.Metrics.Active.Load(), "count", metrics.Gauge, "Open forwarder connections")
	add("accepted_connections", instance.Metrics.Accepted.Swap(0), "count", metrics.Counter, "Connections accepted")
	add("rejected_connections", instance.Metrics.Rejected.Swap(0), "count", metrics.Counter, "Connections refused at the connection limit")
	add("events", instance.Metrics.Events.Swap(0), "count", metrics.Counter, "Records decoded")
	add("bytes_read", instance.Metrics.BytesRead.Swap(0), "bytes", metrics.Counter, "Stream bytes consumed by the decoder")
	add("decode_errors", instance.Metrics.DecodeErrors.Swap(0), "count", metrics.Counter, "Connections closed after an undecodable record")
	add("queue_full_drops", instance.Metrics.QueueFullDrops.Swap(0), "count", metrics.Counter, "Decoded events lost to a full output queue")
	return
}
