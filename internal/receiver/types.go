package receiver

import (
	"context"
	metricGlb "ipfee/internal/metrics"
	"ipfee/internal/queue/bounded"
	"ipfee/internal/receiver/listener"
	"ipfee/internal/receiver/output"
	"ipfee/pkg/protocol"
	"net/http"
	"sync"
	"time"
)

type JSONConfig struct {
	Network struct {
		Address        string `json:"address"`
		Port           int    `json:"port"`
		MaxConnections int    `json:"maxConnections,omitempty"`
		IdleTimeout    string `json:"idleTimeout,omitempty"`
	} `json:"network"`
	Outputs struct {
		Stdout       bool     `json:"stdout,omitempty"`
		StdoutFormat string   `json:"stdoutFormat,omitempty"` // text or json
		QueueSize    int      `json:"queueSize,omitempty"`
		FilePath     string   `json:"filePath,omitempty"` // JSON lines appended here
		BeatsAddress string   `json:"beatsAddress,omitempty"`
		KafkaBrokers []string `json:"kafkaBrokers,omitempty"`
		KafkaTopic   string   `json:"kafkaTopic,omitempty"`
		Timeout      string   `json:"timeout,omitempty"`
	} `json:"outputs"`
	Metrics struct {
		Interval          string `json:"collectionInterval,omitempty"`
		MaxAge            string `json:"maximumRetention,omitempty"`
		EnableQueryServer bool   `json:"enableHTTPQueryServer"`
		QueryServerPort   int    `json:"HTTPQueryServerPort,omitempty"`
	} `json:"metrics"`
}

type Config struct {
	// Basic settings
	ListenIP       string
	ListenPort     int
	MaxConnections int           // zero is unlimited
	IdleTimeout    time.Duration // zero never times out

	// Outputs
	OutputQueueSize int
	StdoutEnabled   bool
	StdoutFormat    string
	OutputFilePath  string
	BeatsEndpoint   string
	KafkaBrokers    []string
	KafkaTopic      string
	OutputTimeout   time.Duration

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
	listenWg     sync.WaitGroup
	shutdownOnce sync.Once

	Queue              *bounded.Queue[protocol.Received]
	Listener           *listener.Instance
	Output             *output.Instance
	outputCancel       context.CancelFunc
	metricsCollector   *metricGlb.Gatherer
	MetricServer       *http.Server
	MetricDataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metricGlb.Metric
	MetricDiscoverer   func(name, description string, namespacePrefix []string, unit string, metricType metricGlb.MetricType) []metricGlb.Metric
	MetricAggregator   func(aggType string, name string, namespace []string, start, end time.Time) (result metricGlb.Metric, err error)
}
