package file

import (
	"ipfee/internal/metrics"
	"time"
)

func (mod *Follower) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	bytesRead := mod.Metrics.BytesRead.Swap(0)
	reopens := mod.Metrics.Reopens.Swap(0)
	truncations := mod.Metrics.Truncation.Swap(0)

	// Record read time
	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "bytes_read",
			Description: "Bytes read from the followed file in the interval",
			Namespace:   mod.Namespace,
			Value: metrics.MetricValue{
				Raw:      bytesRead,
				Unit:     "bytes",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "reopens",
			Description: "Times the followed path was reopened after rotation",
			Namespace:   mod.Namespace,
			Value: metrics.MetricValue{
				Raw:      reopens,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "truncations",
			Description: "Times the followed file shrank and was reread from the start",
			Namespace:   mod.Namespace,
			Value: metrics.MetricValue{
				Raw:      truncations,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
	}
	return
}
