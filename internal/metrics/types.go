package metrics

import (
	"sync"
	"time"
)

// In-memory time series storage, one slice of samples per collection interval
type Registry struct {
	mu     sync.RWMutex
	slices []timeSlice // ordered oldest -> newest by start
}

type timeSlice struct {
	start   time.Time
	samples []Metric          // in the order they were added
	index   map[seriesKey]int // position of each series in samples
}

type seriesKey struct {
	namespace string
	name      string
}

type MetricType string

const (
	Counter MetricType = "counter" // events in the interval (read and reset)
	Gauge   MetricType = "gauge"   // point-in-time reading
	Summary MetricType = "summary" // result of an aggregation
)

type Metric struct {
	Name        string   // e.g. sent_bytes, depth
	Description string   // human readable
	Namespace   []string // e.g. Sender/Forwarder/Queue
	Value       MetricValue
	Type        MetricType
	Timestamp   time.Time // start of the time slice the sample belongs to
}

type MetricValue struct {
	Raw      interface{}   // uint64, int64, float64 or a numeric string
	Unit     string        // count, bytes, state
	Interval time.Duration // measurement window
}

// JSON form served by the query server
type JMetric struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Namespace   string       `json:"namespace"`
	Value       JMetricValue `json:"value"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp"`
}

type JMetricValue struct {
	Raw      string `json:"raw"`
	Unit     string `json:"unit"`
	Interval string `json:"interval"`
}
