package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// StatusCommand — show daemon health, database stats, settings summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// StartCommand — start the burnwatch daemon (local HTTP service).
type StartCommand struct {
	Port     int    `long:"port" description:"Override daemon port"`
	LogLevel string `long:"log-level" description:"Override log level"`

	globals *GlobalFlags
	version string
}

// ScoreCommand — compute the burnout score from persisted metrics.
type ScoreCommand struct {
	Sensitivity string `long:"sensitivity" description:"Override sensitivity: gentle | balanced | aggressive"`

	globals *GlobalFlags
	version string
}

// TrendCommand — print the hourly burnout trend.
type TrendCommand struct {
	Hours int `long:"hours" description:"Number of hourly buckets to show" default:"12"`

	globals *GlobalFlags
	version string
}

// ReportCommand — summarize recorded sessions and video activity, or
// submit a video-activity report to the running daemon.
type ReportCommand struct {
	Videos  int     `long:"videos" description:"Submit: number of videos watched"`
	Seconds float64 `long:"seconds" description:"Submit: watch time in seconds"`
	Binge   bool    `long:"binge" description:"Submit: mark the report as a binge"`

	globals *GlobalFlags
	version string
}

// SettingsCommand — view or update stored settings.
type SettingsCommand struct {
	Sensitivity   string   `long:"sensitivity" description:"Set sensitivity: gentle | balanced | aggressive"`
	Interventions string   `long:"interventions" description:"Enable or disable interventions: on | off"`
	Activities    []string `long:"activity" description:"Preferred break activity (repeatable, replaces the list)"`

	globals *GlobalFlags
	version string
}

// ExportCommand — dump all stored data as JSON.
type ExportCommand struct {
	Output string `long:"output" description:"Write to file instead of stdout"`

	globals *GlobalFlags
	version string
}

// SweepCommand — prune metrics older than the retention window.
type SweepCommand struct {
	DryRun bool `long:"dry-run" description:"Show what would be removed without saving"`

	globals *GlobalFlags
	version string
}

// ResetCommand — delete ALL burnwatch data with safety confirmation.
type ResetCommand struct {
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
}
