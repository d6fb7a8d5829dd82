package sender

import (
	"encoding/json"
	"fmt"
	"ipfee/internal/global"
	"net"
	"os"
	"time"

	"github.com/tidwall/jsonc"
)

// Loads JSONC (comments and trailing commas allowed) config from file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(jsonc.ToJSON(configFile), &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}
	return
}

// Parses JSON config into daemon config
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	config.CollectorAddress = cfg.Collector.Address

	config.Forwarder.Capacity = cfg.Forwarder.QueueCapacity
	durations := []struct {
		field string
		raw   string
		dest  *time.Duration
	}{
		{"forwarder.retryInterval", cfg.Forwarder.RetryInterval, &config.Forwarder.RetryInterval},
		{"forwarder.dialTimeout", cfg.Forwarder.DialTimeout, &config.Forwarder.DialTimeout},
		{"forwarder.writeTimeout", cfg.Forwarder.WriteTimeout, &config.Forwarder.WriteTimeout},
		{"forwarder.keepAlive", cfg.Forwarder.KeepAlive, &config.Forwarder.KeepAlive},
		{"forwarder.userTimeout", cfg.Forwarder.UserTimeout, &config.Forwarder.UserTimeout},
		{"input.drainTimeout", cfg.Input.DrainTimeout, &config.DrainTimeout},
		{"metrics.collectionInterval", cfg.Metrics.Interval, &config.MetricCollectionInterval},
		{"metrics.maximumRetention", cfg.Metrics.MaxAge, &config.MetricMaxAge},
	}
	for _, duration := range durations {
		if duration.raw == "" {
			continue
		}
		*duration.dest, err = time.ParseDuration(duration.raw)
		if err != nil {
			err = fmt.Errorf("failed to parse %s: %w", duration.field, err)
			return
		}
	}

	config.InputPath = cfg.Input.Path
	config.InputFollow = cfg.Input.Follow
	config.ExitOnEOF = cfg.Input.ExitOnEOF

	config.MetricQueryServerEnabled = cfg.Metrics.EnableQueryServer
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	return
}

// Checks required values are usable
func (cfg *Config) validate() (err error) {
	if cfg.CollectorAddress == "" {
		err = fmt.Errorf("cannot start without a collector address")
		return
	}
	if cfg.InputFollow && (cfg.InputPath == "" || cfg.InputPath == "-") {
		err = fmt.Errorf("following input requires a file path")
		return
	}
	if cfg.InputFollow && cfg.ExitOnEOF {
		err = fmt.Errorf("followed input never ends, exitOnEOF cannot be used with follow")
		return
	}
	_, port, err := net.SplitHostPort(cfg.CollectorAddress)
	if err != nil {
		err = fmt.Errorf("invalid collector address %q: %w", cfg.CollectorAddress, err)
		return
	}
	if port == "" {
		err = fmt.Errorf("invalid collector address %q: missing port", cfg.CollectorAddress)
		return
	}
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	if cfg.InputPath == "" {
		cfg.InputPath = "-"
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = global.SendShutdownTimeout
	}

	// Metrics
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = global.DefaultMetricMaxAge
	}
	if cfg.MetricQueryServerPort == 0 {
		cfg.MetricQueryServerPort = global.HTTPListenPortSender
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = global.DefaultMetricInterval
	}
}
