package pkg

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the options of a run. Zero values fall back to defaults in
// Validate.
type Config struct {
	Root string `yaml:"root"`
	// OutputDir receives the scripts; defaults to Root.
	OutputDir     string  `yaml:"output_dir"`
	Dialect       Dialect `yaml:"dialect"`
	ForwardScript string  `yaml:"forward_script"`
	InverseScript string  `yaml:"inverse_script"`
	// ReportFile, when set, receives a text report.
	ReportFile string `yaml:"report_file"`
	// Timezone is an IANA zone name used to render times; empty means local time.
	Timezone string `yaml:"timezone"`
	LogFile  string `yaml:"log_file"`
	Verbose  bool   `yaml:"verbose"`
	// DryRun prints the scripts instead of writing them.
	DryRun   bool `yaml:"dry_run"`
	Progress bool `yaml:"progress"`
}

// DefaultConfig returns the configuration used when no file is given.
// Script names are left empty so Validate derives them from the final
// dialect.
func DefaultConfig() *Config {
	return &Config{
		Dialect:  DialectBatch,
		Progress: true,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks required fields and fills in derived defaults.
func (c *Config) Validate() error {
	if c.Root == "" {
		return &ValidationError{Field: "root", Message: "root directory is required"}
	}
	if c.Dialect == "" {
		c.Dialect = DialectBatch
	}
	if !c.Dialect.Valid() {
		return &ValidationError{Field: "dialect", Message: fmt.Sprintf("unknown dialect %q (want batch or sh)", c.Dialect)}
	}
	forward, inverse := DefaultScriptNames(c.Dialect)
	if c.ForwardScript == "" {
		c.ForwardScript = forward
	}
	if c.InverseScript == "" {
		c.InverseScript = inverse
	}
	if c.ForwardScript == c.InverseScript {
		return &ValidationError{Field: "inverse_script", Message: "forward and inverse scripts must differ"}
	}
	if c.OutputDir == "" {
		c.OutputDir = c.Root
	}
	if _, err := c.Location(); err != nil {
		return &ValidationError{Field: "timezone", Message: err.Error()}
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
