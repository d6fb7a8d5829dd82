package cli

import (
	"context"
	"ipfee/internal/global"
	"ipfee/internal/logctx"

	"github.com/spf13/pflag"
)

func SetGlobalArguments(fs *pflag.FlagSet) {
	fs.IntVarP(&global.Verbosity, "verbosity", "v", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
}

func SetCommon(fs *pflag.FlagSet, configPath *string) {
	fs.StringVarP(configPath, "config", "c", global.DefaultConfigPath, "Path to the configuration file")
}

// Applies the parsed verbosity to the running logger
func applyVerbosity(ctx context.Context) {
	logctx.SetLogLevel(ctx, global.Verbosity)
}
