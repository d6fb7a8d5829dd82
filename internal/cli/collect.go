package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"ipfee/internal/lifecycle"
	"ipfee/internal/receiver"
	"os"

	"github.com/spf13/pflag"
)

type collectArgs struct {
	configPath    string
	configChanged bool
	listen        string
	port          int
	format        string
	file          string
	beats         string
	kafkaBrokers  []string
	kafkaTopic    string
}

func collectFlags(commandname string, parsed *collectArgs) (commandFlags *pflag.FlagSet) {
	commandFlags = pflag.NewFlagSet(commandname, pflag.ContinueOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &parsed.configPath)
	commandFlags.StringVarP(&parsed.listen, "listen", "l", "", "Listen IP address (overrides config)")
	commandFlags.IntVarP(&parsed.port, "port", "p", 0, "Listen TCP port (overrides config)")
	commandFlags.StringVar(&parsed.format, "format", "", "Stdout line format: text or json (overrides config)")
	commandFlags.StringVar(&parsed.file, "file", "", "Append events as JSON lines to this file")
	commandFlags.StringVar(&parsed.beats, "beats", "", "Beats/Logstash host:port to relay events to")
	commandFlags.StringSliceVar(&parsed.kafkaBrokers, "kafka-brokers", nil, "Comma separated kafka brokers to publish events to")
	commandFlags.StringVar(&parsed.kafkaTopic, "kafka-topic", "", "Kafka topic for published events")
	return
}

// Merges config file (when present) with command line overrides
func (parsed collectArgs) daemonConfig() (daemonConfig receiver.Config, err error) {
	var jsonCfg receiver.JSONConfig

	jsonCfg, err = receiver.LoadConfig(parsed.configPath)
	if err != nil {
		// Collector runs on defaults when the default config path is absent
		if parsed.configChanged || !errors.Is(err, fs.ErrNotExist) {
			return
		}
		err = nil
	}

	if parsed.listen != "" {
		jsonCfg.Network.Address = parsed.listen
	}
	if parsed.port != 0 {
		jsonCfg.Network.Port = parsed.port
	}
	if parsed.format != "" {
		jsonCfg.Outputs.Stdout = true
		jsonCfg.Outputs.StdoutFormat = parsed.format
	}
	if parsed.file != "" {
		jsonCfg.Outputs.FilePath = parsed.file
	}
	if parsed.beats != "" {
		jsonCfg.Outputs.BeatsAddress = parsed.beats
	}
	if len(parsed.kafkaBrokers) > 0 {
		jsonCfg.Outputs.KafkaBrokers = parsed.kafkaBrokers
	}
	if parsed.kafkaTopic != "" {
		jsonCfg.Outputs.KafkaTopic = parsed.kafkaTopic
	}

	daemonConfig, err = jsonCfg.NewDaemonConf()
	return
}

func CollectMode(ctx context.Context, cliOpts *Command, commandname string, args []string) {
	var parsed collectArgs
	commandFlags := collectFlags(commandname, &parsed)
	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	err := commandFlags.Parse(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	parsed.configChanged = commandFlags.Changed("config")
	applyVerbosity(ctx)

	daemonConfig, err := parsed.daemonConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	recvDaemon := receiver.NewDaemon(daemonConfig)
	err = recvDaemon.Start(ctx)
	if err != nil {
		recvDaemon.Shutdown()
		fmt.Fprintf(os.Stderr, "Error starting collecting daemon: %v\n", err)
		os.Exit(1)
	}

	lifecycle.SignalHandler(ctx, recvDaemon)
}
