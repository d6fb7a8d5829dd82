package output

import (
	"ipfee/internal/metrics"
	"time"
)

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()

	add := func(name string, raw uint64, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   instance.Namespace,
			Type:        metrics.Counter,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     "count",
				Interval: interval,
			},
		})
	}

	add("received_events", instance.Metrics.ReceivedEvents.Swap(0), "Events taken from the output queue")
	add("stdout_lines", instance.Metrics.SuccessfulStdoutLines.Swap(0), "Lines written to stdout")
	add("file_lines", instance.Metrics.SuccessfulFileLines.Swap(0), "Lines written to the output file")
	add("beats_writes", instance.Metrics.SuccessfulBeatsWrites.Swap(0), "Events acknowledged by the beats server")
	add("kafka_writes", instance.Metrics.SuccessfulKafkaWrites.Swap(0), "Events published to kafka")
	add("failed_writes", instance.Metrics.FailedWrites.Swap(0), "Output writes that returned an error")

	collection = append(collection, instance.Inbox.CollectMetrics(interval)...)
	return
}
