package receiver

import (
	"encoding/json"
	"fmt"
	"ipfee/internal/global"
	"ipfee/internal/receiver/output"
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
	// Network settings
	config.ListenIP = cfg.Network.Address
	config.ListenPort = cfg.Network.Port
	config.MaxConnections = cfg.Network.MaxConnections
	if cfg.Network.IdleTimeout != "" {
		config.IdleTimeout, err = time.ParseDuration(cfg.Network.IdleTimeout)
		if err != nil {
			err = fmt.Errorf("failed to parse connection idle timeout: %w", err)
			return
		}
	}

	// Output settings
	config.StdoutEnabled = cfg.Outputs.Stdout
	config.StdoutFormat = cfg.Outputs.StdoutFormat
	config.OutputQueueSize = cfg.Outputs.QueueSize
	config.OutputFilePath = cfg.Outputs.FilePath
	config.BeatsEndpoint = cfg.Outputs.BeatsAddress
	config.KafkaBrokers = cfg.Outputs.KafkaBrokers
	config.KafkaTopic = cfg.Outputs.KafkaTopic
	if cfg.Outputs.Timeout != "" {
		config.OutputTimeout, err = time.ParseDuration(cfg.Outputs.Timeout)
		if err != nil {
			err = fmt.Errorf("failed to parse output timeout: %w", err)
			return
		}
	}

	// Metric settings
	config.MetricQueryServerEnabled = cfg.Metrics.EnableQueryServer
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	if cfg.Metrics.MaxAge != "" {
		config.MetricMaxAge, err = time.ParseDuration(cfg.Metrics.MaxAge)
		if err != nil {
			err = fmt.Errorf("failed to parse metric max age time: %w", err)
			return
		}
	}
	if cfg.Metrics.Interval != "" {
		config.MetricCollectionInterval, err = time.ParseDuration(cfg.Metrics.Interval)
		if err != nil {
			err = fmt.Errorf("failed to parse metric collection interval time: %w", err)
			return
		}
	}
	return
}

// Checks output settings are usable
func (cfg *Config) validate() (err error) {
	switch cfg.StdoutFormat {
	case "", output.FormatText, output.FormatJSON:
	default:
		err = fmt.Errorf("unknown stdout format %q (expected %s or %s)", cfg.StdoutFormat, output.FormatText, output.FormatJSON)
		return
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		err = fmt.Errorf("kafka output needs a topic")
		return
	}
	if cfg.ListenPort < 0 || cfg.ListenPort > 65535 {
		err = fmt.Errorf("invalid listen port %d", cfg.ListenPort)
		return
	}
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Network
	if cfg.ListenIP == "" {
		cfg.ListenIP = "::"
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = global.DefaultCollectorPort
	}
	if cfg.MaxConnections < 0 {
		cfg.MaxConnections = 0
	}

	// Outputs
	if cfg.OutputQueueSize < 2 {
		cfg.OutputQueueSize = global.DefaultQueueCapacity
	}
	if cfg.StdoutFormat == "" {
		cfg.StdoutFormat = output.FormatText
	}
	if !cfg.StdoutEnabled && cfg.OutputFilePath == "" && cfg.BeatsEndpoint == "" && len(cfg.KafkaBrokers) == 0 {
		// Nothing else configured, events still need to go somewhere
		cfg.StdoutEnabled = true
	}

	// Metrics
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = global.DefaultMetricMaxAge
	}
	if cfg.MetricQueryServerPort == 0 {
		cfg.MetricQueryServerPort = global.HTTPListenPortReceiver
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = global.DefaultMetricInterval
	}
}
