package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Status   *StatusCommand
	Start    *StartCommand
	Score    *ScoreCommand
	Trend    *TrendCommand
	Report   *ReportCommand
	Settings *SettingsCommand
	Export   *ExportCommand
	Sweep    *SweepCommand
	Reset    *ResetCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "burnwatch"
	parser.LongDescription = "Local burnout scoring daemon and toolkit for the burnwatch browser extension."

	cmds := &commands{
		Status:   &StatusCommand{globals: &globals, version: version},
		Start:    &StartCommand{globals: &globals, version: version},
		Score:    &ScoreCommand{globals: &globals, version: version},
		Trend:    &TrendCommand{globals: &globals, version: version},
		Report:   &ReportCommand{globals: &globals, version: version},
		Settings: &SettingsCommand{globals: &globals, version: version},
		Export:   &ExportCommand{globals: &globals, version: version},
		Sweep:    &SweepCommand{globals: &globals, version: version},
		Reset:    &ResetCommand{globals: &globals, version: version},
	}

	parser.AddCommand("status", "Show daemon health and database statistics", "Show daemon health, database statistics, and stored settings.", cmds.Status)
	parser.AddCommand("start", "Start the burnwatch daemon", "Start the burnwatch daemon (local HTTP service).", cmds.Start)
	parser.AddCommand("score", "Compute the current burnout score", "Compute the burnout score from the persisted metrics snapshot.", cmds.Score)
	parser.AddCommand("trend", "Print the hourly burnout trend", "Print the most recent hourly burnout trend buckets.", cmds.Trend)
	parser.AddCommand("report", "Summarize sessions and video activity", "Summarize recorded scoring sessions and video activity.", cmds.Report)
	parser.AddCommand("settings", "View or update stored settings", "View or update sensitivity, interventions, and break activities.", cmds.Settings)
	parser.AddCommand("export", "Dump all stored data as JSON", "Dump sessions, trend data, and settings as a JSON document.", cmds.Export)
	parser.AddCommand("sweep", "Prune metrics older than the retention window", "Remove metric entries older than the retention window from the snapshot.", cmds.Sweep)
	parser.AddCommand("reset", "Delete ALL burnwatch data", "Delete ALL burnwatch data. Destructive operation with safety prompt.", cmds.Reset)

	return parser, &globals, cmds
}

// Run is the main entry point for the burnwatch CLI using os.Args.
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
			fmt.Printf("burnwatch %s\n", version)
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
