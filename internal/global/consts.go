package global

import "time"

// Keys for values carried in a context.Context
type CtxKey string

const (
	// Log levels, each including the ones before it. Errors are logged at every level.
	VerbosityNone     int = iota // errors only
	VerbosityStandard            // startup, shutdown, connection changes
	VerbosityProgress            // drains, reconnect details
	VerbosityData                // one line per event
	VerbosityFullData
	VerbosityDebug // raw bytes

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion  string = "v0.3.0"
	ProgBaseName string = "ipfee"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath    string = "/etc/ipfee.jsonc"
	DefaultCollectorPort int    = 8515

	// Forwarder defaults
	DefaultQueueCapacity        int           = 10_000
	DefaultConnectRetryInterval time.Duration = 1 * time.Second
	DefaultDialTimeout          time.Duration = 3 * time.Second
	DefaultKeepAlive            time.Duration = 15 * time.Second

	// Timeout values
	ReceiveShutdownTimeout time.Duration = 20 * time.Second
	SendShutdownTimeout    time.Duration = 5 * time.Second

	// Metric HTTP server
	HTTPListenPortSender   int           = 10000 + DefaultCollectorPort // Default listen port
	HTTPListenPortReceiver int           = 20000 + DefaultCollectorPort // Default listen port
	HTTPListenAddr         string        = "localhost"                  // Metric queries only exposed to local machine
	HTTPReadTimeout        time.Duration = 30 * time.Second
	HTTPWriteTimeout       time.Duration = 10 * time.Second
	HTTPIdleTimeout        time.Duration = 180 * time.Second
	DataPath               string        = "/data/"
	DiscoveryPath          string        = "/discover/"
	AggregationPath        string        = "/aggregate/"

	// Metric aggregation functions
	MetricSum string = "sum"
	MetricMin string = "min"
	MetricMax string = "max"
	MetricAvg string = "avg"

	// Metric collection
	DefaultMetricInterval time.Duration = 30 * time.Second
	DefaultMetricMaxAge   time.Duration = 1 * time.Hour

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSRecv      string = "Receiver"
	NSSend      string = "Sender"
	NSFwd       string = "Forwarder"
	NSQueue     string = "Queue"
	NSListen    string = "Listener"
	NSConn      string = "Conn"
	NSIngest    string = "Ingest"
	NSOut       string = "Output"
	NSoStdout   string = "Stdout"
	NSoBeats    string = "Beats"
	NSoKafka    string = "Kafka"
	NSoFile     string = "File"
	NSiFile     string = "FileInput"
)
