package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Process    *ProcessCommand
	AddRule    *AddRuleCommand
	RemoveRule *RemoveRuleCommand
	Rules      *RulesCommand
	Metrics    *MetricsCommand
	Cleanup    *CleanupCommand
	Export     *ExportCommand
	Import     *ImportCommand
	Status     *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "heed"
	parser.LongDescription = "Local attention ledger: rule-based content filtering with attention metrics."

	cmds := &commands{
		Process:    &ProcessCommand{globals: &globals, version: version},
		AddRule:    &AddRuleCommand{globals: &globals, version: version},
		RemoveRule: &RemoveRuleCommand{globals: &globals, version: version},
		Rules:      &RulesCommand{globals: &globals, version: version},
		Metrics:    &MetricsCommand{globals: &globals, version: version},
		Cleanup:    &CleanupCommand{globals: &globals, version: version},
		Export:     &ExportCommand{globals: &globals, version: version},
		Import:     &ImportCommand{globals: &globals, version: version},
		Status:     &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("process", "Process a piece of content", "Run one content unit through the filtering rules and track attention if it survives.", cmds.Process)
	parser.AddCommand("add-rule", "Add a content filtering rule", "Add or replace a condition/action rule by identifier.", cmds.AddRule)
	parser.AddCommand("remove-rule", "Remove a filtering rule", "Remove a rule from the live set and durable storage.", cmds.RemoveRule)
	parser.AddCommand("rules", "List filtering rules", "List all stored filtering rules, most recently updated first.", cmds.Rules)
	parser.AddCommand("metrics", "View attention metrics", "Show attention metrics for one content ID or the most recent records.", cmds.Metrics)
	parser.AddCommand("cleanup", "Delete old metrics", "Delete metrics whose last interaction is older than the retention window. Destructive.", cmds.Cleanup)
	parser.AddCommand("export", "Export metrics to a JSON file", "Write the full metrics set to a JSON file.", cmds.Export)
	parser.AddCommand("import", "Import metrics from a JSON file", "Merge metrics from a JSON export into the database.", cmds.Import)
	parser.AddCommand("status", "Show database statistics", "Show metric and rule counts, tracked time span, and top content.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the heed CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("heed %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
