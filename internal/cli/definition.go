package cli

// Command tree for help output; flags are defined by each mode
func DefineOptions() (root *Command) {
	root = &Command{
		Name:        RootCLICommand,
		Summary:     "IP/Fee Telemetry Forwarder (ipfee)",
		Details:     "  Ships transaction and fee events to a remote collector over TCP, best effort",
		Subcommands: make(map[string]*Command),
	}

	for _, sub := range []*Command{
		{
			Name:    "forward",
			Summary: "Forward Events",
			Details: "Reads newline-delimited JSON events from stdin or a file and streams them to the configured collector",
		},
		{
			Name:    "collect",
			Summary: "Collect Events",
			Details: "Accepts forwarder connections, decodes events, and writes them to configured outputs",
		},
		{
			Name:    "configure",
			Summary: "Setup Actions",
			Details: "Generate template configuration files",
		},
		{
			Name:    "version",
			Summary: "Show Version Information",
			Details: "Display meta information about program",
		},
	} {
		root.Subcommands[sub.Name] = sub
	}
	return
}
