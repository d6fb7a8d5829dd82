package main

import (
	"context"
	"fmt"
	"io"
	"ipfee/internal/cli"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"os"
	"runtime"

	"github.com/spf13/pflag"
)

type modeRunner func(ctx context.Context, root *cli.Command, name string, args []string)

func main() {
	os.Exit(run(os.Args, os.Stdout))
}

func run(argv []string, stdout io.Writer) (exitCode int) {
	root := cli.DefineOptions()

	rootFlags := pflag.NewFlagSet(argv[0], pflag.ContinueOnError)
	cli.SetGlobalArguments(rootFlags)
	showHelp := func() { cli.PrintHelpMenu(rootFlags, cli.RootCLICommand, root) }
	rootFlags.Usage = showHelp

	if len(argv) < 2 {
		showHelp()
		exitCode = 1
		return
	}
	name, rest := argv[1], argv[2:]

	modes := map[string]modeRunner{
		"forward": cli.ForwardMode,
		"collect": cli.CollectMode,
		"configure": func(_ context.Context, root *cli.Command, name string, args []string) {
			cli.SetupMode(root, name, args)
		},
	}

	switch name {
	case "version":
		printVersion(stdout, len(rest) > 0 && (rest[0] == "--verbosity" || rest[0] == "-v"))
		return
	case "help", "-h", "--help":
		showHelp()
		return
	}

	mode, known := modes[name]
	if !known {
		showHelp()
		exitCode = 1
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := logctx.NewLogger("global", global.VerbosityStandard, ctx.Done())
	ctx = logctx.WithLogger(ctx, logger)
	logctx.StartWatcher(logger, stdout)

	mode(ctx, root, name, rest)

	// Flush whatever the global logger still holds
	cancel()
	logger.Wake()
	logger.Wait()
	return
}

func printVersion(out io.Writer, verbose bool) {
	if !verbose {
		fmt.Fprintln(out, global.ProgVersion)
		return
	}
	fmt.Fprintf(out, "ipfee %s\n", global.ProgVersion)
	fmt.Fprintf(out, "Built using %s(%s) for %s on %s\n", runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
}
