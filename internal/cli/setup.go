package cli

import (
	"errors"
	"fmt"
	"ipfee/internal/install"
	"os"

	"github.com/spf13/pflag"
)

// Setup options
func SetupMode(cliOpts *Command, commandname string, args []string) {
	var newForwardConf bool
	var newCollectConf bool
	var templateConfPath string

	commandFlags := pflag.NewFlagSet(commandname, pflag.ContinueOnError)
	commandFlags.StringVarP(&templateConfPath, "config", "c", "", "Path to template config file")
	commandFlags.BoolVar(&newForwardConf, "forward-config-template", false, "Create new template config for the forwarding daemon (using config argument)")
	commandFlags.BoolVar(&newCollectConf, "collect-config-template", false, "Create new template config for the collecting daemon (using config argument)")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}
	err := commandFlags.Parse(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if newForwardConf {
		err = install.CreateForwardTemplateConfig(templateConfPath)
	} else if newCollectConf {
		err = install.CreateCollectTemplateConfig(templateConfPath)
	} else {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
