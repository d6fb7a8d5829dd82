package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Events are read as one JSON object per line, for example:
  {"type":"fee","signature":"<base58>","cuLimit":200000,"cuUsed":150000,"fee":5000}
  {"type":"userTx","ip":"203.0.113.7","signature":"<base58>"}
`
)

// Prints usage for command (root or one of its direct subcommands) to stdout
func PrintHelpMenu(fs *pflag.FlagSet, command string, rootCmd *Command) {
	writeHelpMenu(os.Stdout, fs, command, rootCmd)
}

func writeHelpMenu(out io.Writer, fs *pflag.FlagSet, command string, rootCmd *Command) {
	isRoot := command == "" || command == RootCLICommand

	cmd := rootCmd
	usage := os.Args[0]
	if !isRoot {
		var ok bool
		cmd, ok = rootCmd.Subcommands[command]
		if !ok {
			fmt.Fprintf(out, "Unknown command: %s\n", command)
			return
		}
		usage += " " + cmd.Name
	}
	if len(cmd.Subcommands) > 0 {
		usage += " [subcommand]"
	}
	fmt.Fprintf(out, "Usage: %s\n\n", usage)

	if isRoot {
		fmt.Fprintf(out, "%s\n%s\n\n", cmd.Summary, cmd.Details)
	} else if cmd.Details != "" {
		fmt.Fprintf(out, "  Description:\n    %s\n\n", cmd.Details)
	}

	if len(cmd.Subcommands) > 0 {
		fmt.Fprintln(out, "  Subcommands:")
		table := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		names := make([]string, 0, len(cmd.Subcommands))
		for name := range cmd.Subcommands {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(table, "    %s\t- %s\n", name, cmd.Subcommands[name].Summary)
		}
		table.Flush()
		fmt.Fprintln(out)
	}

	if fs != nil {
		printFlagOptions(out, fs)
	}

	if isRoot {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

// Lists flags as "  -s, --long  usage [default: x]", long-only flags aligned with the long half
func printFlagOptions(out io.Writer, fs *pflag.FlagSet) {
	type option struct {
		sortKey string
		names   string
		usage   string
	}

	var options []option
	fs.VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		names := "    --" + flag.Name
		if flag.Shorthand != "" {
			names = "-" + flag.Shorthand + ", --" + flag.Name
		}

		usage := flag.Usage
		switch flag.DefValue {
		case "", "false", "0", "[]":
		default:
			usage += " [default: " + flag.DefValue + "]"
		}
		options = append(options, option{
			sortKey: strings.ToLower(flag.Name),
			names:   names,
			usage:   usage,
		})
	})
	if len(options) == 0 {
		return
	}
	slices.SortFunc(options, func(a, b option) int { return strings.Compare(a.sortKey, b.sortKey) })

	fmt.Fprintln(out, "  Options:")
	table := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, opt := range options {
		fmt.Fprintf(table, "  %s\t%s\n", opt.names, opt.usage)
	}
	table.Flush()
}
