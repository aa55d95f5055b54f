// Package commands is the terminal's subcommand registry. Each command owns a
// flag.FlagSet so per-command flags parse and report errors the standard way.
package commands

import (
	"flag"
	"fmt"
	"strings"
)

// Command is a subcommand with its own flags and a Run function.
type Command struct {
	Name    string
	FlagSet *flag.FlagSet
	Run     func(args []string) error
}

// Registry holds subcommands by name. Add commands with Register; run with Execute.
type Registry struct {
	cmds  map[string]*Command
	order []string
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Register adds a subcommand. fs is that command's FlagSet; run is called
// after fs.Parse succeeds with the remaining positional arguments.
func (r *Registry) Register(name string, fs *flag.FlagSet, run func(args []string) error) {
	if _, exists := r.cmds[name]; !exists {
		r.order = append(r.order, name)
	}
	r.cmds[name] = &Command{Name: name, FlagSet: fs, Run: run}
}

// Names returns registered command names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Parse tokenizes a terminal line. Empty lines return ok false.
func Parse(line string) (args []string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}

// Execute runs the subcommand in args[0] with args[1:] as flag/positional
// arguments. Returns an error for unknown command, parse error, or from Run.
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	cmd, ok := r.cmds[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s (try help)", args[0])
	}
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return err
	}
	return cmd.Run(cmd.FlagSet.Args())
}
