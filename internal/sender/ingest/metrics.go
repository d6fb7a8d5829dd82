package ingest

import (
	"ipfee/internal/metrics"
	"time"
)

func (reader *Reader) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()

	add := func(name string, raw uint64, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   reader.Namespace,
			Type:        metrics.Counter,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     "count",
				Interval: interval,
			},
		})
	}

	add("lines", reader.Metrics.Lines.Swap(0), "Event lines read from input")
	add("invalid", reader.Metrics.Invalid.Swap(0), "Lines that could not be parsed into an event")
	add("submitted", reader.Metrics.Submitted.Swap(0), "Events accepted by the forwarder")
	add("rejected", reader.Metrics.Rejected.Swap(0), "Events the forwarder dropped on submit")
	return
}
