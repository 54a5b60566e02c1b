package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ProcessCommand — run one content unit through the rule pipeline.
type ProcessCommand struct {
	ID       string   `long:"id" description:"Content identifier (generated if omitted)"`
	Text     string   `long:"text" description:"Content text (required)"`
	Duration int64    `long:"duration" description:"View duration in milliseconds" default:"-1"`
	Meta     []string `long:"meta" description:"Metadata entry as key=value (repeatable)"`

	globals *GlobalFlags
	version string
}

// AddRuleCommand — add or replace a content filtering rule.
type AddRuleCommand struct {
	ID        string   `long:"id" description:"Unique rule identifier (required)"`
	Condition string   `long:"condition" description:"Condition type: keyword | regex | ml" default:"keyword"`
	Value     string   `long:"value" description:"Condition value: keyword text, regex pattern, or model ID"`
	Threshold float64  `long:"threshold" description:"Match threshold for ml conditions" default:"0.5"`
	Action    string   `long:"action" description:"Action type: filter | modify | flag" default:"filter"`
	Transform string   `long:"transform" description:"Modify template; {content} marks the original text"`
	Flags     []string `long:"flag" description:"Flag to append on match (repeatable, flag action)"`

	globals *GlobalFlags
	version string
}

// RemoveRuleCommand — remove a rule by identifier.
type RemoveRuleCommand struct {
	ID string `long:"id" description:"Rule identifier (required)"`

	globals *GlobalFlags
	version string
}

// RulesCommand — list all stored rules.
type RulesCommand struct {
	globals *GlobalFlags
	version string
}

// MetricsCommand — show attention metrics for one or all content IDs.
type MetricsCommand struct {
	ID           string `long:"id" description:"Specific content ID to show"`
	Top          int    `long:"top" description:"Maximum records to list" default:"10"`
	Distribution bool   `long:"distribution" description:"Show each record's share of total duration"`

	globals *GlobalFlags
	version string
}

// CleanupCommand — delete metrics older than the retention window.
type CleanupCommand struct {
	Days int `long:"days" description:"Keep metrics from the last N days (0 uses config retention)" default:"0"`

	globals *GlobalFlags
	version string
}

// ExportCommand — write all metrics to a JSON file.
type ExportCommand struct {
	Output string `long:"output" description:"Output file path (required)"`

	globals *GlobalFlags
	version string
}

// ImportCommand — merge metrics from a JSON file.
type ImportCommand struct {
	Input string `long:"input" description:"Input file path (required)"`

	globals *GlobalFlags
	version string
}

// StatusCommand — show database statistics and configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
