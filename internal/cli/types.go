package cli

// Node of the command tree shown by the help menu
type Command struct {
	Name        string // as typed on the command line
	Summary     string // one line, listed under the parent
	Details     string // shown on the command's own help page
	Subcommands map[string]*Command
}
