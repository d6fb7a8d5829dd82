package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"ipfee/internal/lifecycle"
	"ipfee/internal/sender"
	"os"

	"github.com/spf13/pflag"
)

type forwardArgs struct {
	configPath    string
	configChanged bool
	collector     string
	input         string
	follow        bool
	exitOnEOF     bool
	queueCapacity int
}

func forwardFlags(commandname string, parsed *forwardArgs) (commandFlags *pflag.FlagSet) {
	commandFlags = pflag.NewFlagSet(commandname, pflag.ContinueOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &parsed.configPath)
	commandFlags.StringVarP(&parsed.collector, "collector", "a", "", "Collector host:port (overrides config)")
	commandFlags.StringVarP(&parsed.input, "input", "i", "", "Event source file, '-' for stdin (overrides config)")
	commandFlags.BoolVarP(&parsed.follow, "follow", "f", false, "Keep reading the input file as it grows, across rotation")
	commandFlags.BoolVar(&parsed.exitOnEOF, "exit-on-eof", false, "Exit once input ends and queued events are delivered")
	commandFlags.IntVar(&parsed.queueCapacity, "queue-capacity", 0, "Maximum queued events (overrides config)")
	return
}

// Merges config file (when present) with command line overrides
func (parsed forwardArgs) daemonConfig() (daemonConfig sender.Config, err error) {
	var jsonCfg sender.JSONConfig

	jsonCfg, err = sender.LoadConfig(parsed.configPath)
	if err != nil {
		// Default config path is optional when the collector comes from flags
		if parsed.configChanged || !errors.Is(err, fs.ErrNotExist) || parsed.collector == "" {
			return
		}
		err = nil
	}

	if parsed.collector != "" {
		jsonCfg.Collector.Address = parsed.collector
	}
	if parsed.input != "" {
		jsonCfg.Input.Path = parsed.input
	}
	if parsed.follow {
		jsonCfg.Input.Follow = true
	}
	if parsed.exitOnEOF {
		jsonCfg.Input.ExitOnEOF = true
	}
	if parsed.queueCapacity != 0 {
		jsonCfg.Forwarder.QueueCapacity = parsed.queueCapacity
	}

	daemonConfig, err = jsonCfg.NewDaemonConf()
	return
}

func ForwardMode(ctx context.Context, cliOpts *Command, commandname string, args []string) {
	var parsed forwardArgs
	commandFlags := forwardFlags(commandname, &parsed)
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

	sendDaemon := sender.NewDaemon(daemonConfig)
	err = sendDaemon.Start(ctx)
	if err != nil {
		sendDaemon.Shutdown()
		fmt.Fprintf(os.Stderr, "Error starting forwarding daemon: %v\n", err)
		os.Exit(1)
	}

	lifecycle.SignalHandler(ctx, sendDaemon)
	sendDaemon.Run()
}
