// Package config provides configuration management for the fprime-extras CLI.
//
// Configuration is layered with koanf: built-in defaults, then an fplint.yml
// file, then FPLINT_ environment variables, then explicitly set flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Exclusions lists rule and check identifiers whose findings are suppressed.
	Exclusions []string `koanf:"exclusions"`
	// Filters drops topology check problems whose identifier or module matches.
	Filters []string `koanf:"filters"`
	// Severity overrides the default severity per identifier.
	Severity map[string]string `koanf:"severity"`
	// Args carries extra arguments for topology checks, such as port-ignore.
	Args map[string]string `koanf:"args"`

	FprimeRoot   string `koanf:"fprime_root"`
	LogLevel     string `koanf:"log_level"`
	OutputFormat string `koanf:"output"`
	Jobs         int    `koanf:"jobs"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultLogLevel = "WARNING"
	DefaultOutput   = "auto" // Auto-detect: TTY=text, non-TTY=plain text
	DefaultJobs     = 1

	// EnvPrefix prefixes environment variables, e.g. FPLINT_FPRIME_ROOT.
	EnvPrefix = "FPLINT_"
)

// FileNames are the config file names searched for, in order.
var FileNames = []string{"fplint.yml", "fplint.yaml", ".fplint.yml"}
