package sender

import (
	"context"
	"io"
	"ipfee/internal/externalio/file"
	"ipfee/internal/forwarder"
	metricGlb "ipfee/internal/metrics"
	"ipfee/internal/sender/ingest"
	"net/http"
	"sync"
	"time"
)

type JSONConfig struct {
	Collector struct {
		Address string `json:"address"` // host:port
	} `json:"collector"`
	Forwarder struct {
		QueueCapacity int    `json:"queueCapacity,omitempty"`
		RetryInterval string `json:"retryInterval,omitempty"`
		DialTimeout   string `json:"dialTimeout,omitempty"`
		WriteTimeout  string `json:"writeTimeout,omitempty"`
		KeepAlive     string `json:"keepAlive,omitempty"`
		UserTimeout   string `json:"userTimeout,omitempty"`
	} `json:"forwarder"`
	Input struct {
		Path         string `json:"path,omitempty"`   // file path, "-" or empty for stdin
		Follow       bool   `json:"follow,omitempty"` // keep reading as the file grows and rotates
		ExitOnEOF    bool   `json:"exitOnEOF,omitempty"`
		DrainTimeout string `json:"drainTimeout,omitempty"`
	} `json:"input"`
	Metrics struct {
		Interval          string `json:"collectionInterval,omitempty"`
		MaxAge            string `json:"maximumRetention,omitempty"`
		EnableQueryServer bool   `json:"enableHTTPQueryServer"`
		QueryServerPort   int    `json:"HTTPQueryServerPort,omitempty"`
	} `json:"metrics"`
}

type Config struct {
	// Destination
	CollectorAddress string

	Forwarder forwarder.Config

	// Source settings
	InputPath    string
	InputFollow  bool          // tail the input file instead of reading it once
	ExitOnEOF    bool          // stop once input ends and the queue is empty
	DrainTimeout time.Duration // max wait for the queue to empty after input ends

	// Metrics
	MetricQueryServerEnabled bool
	MetricQueryServerPort    int
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

type Daemon struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	wg           sync.WaitGroup
	done         chan struct{}
	doneOnce     sync.Once
	shutdownOnce sync.Once

	input    io.ReadCloser
	follower *file.Follower

	// Pipeline components
	Forwarder          *forwarder.Forwarder
	Ingest             *ingest.Reader
	metricsCollector   *metricGlb.Gatherer
	MetricServer       *http.Server
	MetricDataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metricGlb.Metric
	MetricDiscoverer   func(name, description string, namespacePrefix []string, unit string, metricType metricGlb.MetricType) []metricGlb.Metric
	MetricAggregator   func(aggType string, name string, namespace []string, start, end time.Time) (result metricGlb.Metric, err error)
}
