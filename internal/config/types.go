package config

import (
	"fmt"
	"time"

	"github.com/alanmeadows/cleancheck/internal/logging"
	"github.com/alanmeadows/cleancheck/pkg/cleancheck"
	"github.com/alanmeadows/cleancheck/pkg/vcs"
)

// Config is the top-level cleancheck configuration.
type Config struct {
	Check  CheckConfig  `json:"check"`
	VCS    VCSConfig    `json:"vcs"`
	Output OutputConfig `json:"output"`
	Watch  WatchConfig  `json:"watch"`
	Log    LogConfig    `json:"log"`
}

// CheckConfig holds the default permissions applied when no flag overrides them.
type CheckConfig struct {
	AllowDirty  bool `json:"allow_dirty"`
	AllowNoVCS  bool `json:"allow_no_vcs"`
	AllowStaged bool `json:"allow_staged"`
}

// Options converts the permissions to the library type.
func (c CheckConfig) Options() cleancheck.Options {
	return cleancheck.Options{
		AllowDirty:  c.AllowDirty,
		AllowNoVCS:  c.AllowNoVCS,
		AllowStaged: c.AllowStaged,
	}
}

// VCSConfig controls how repositories are detected.
type VCSConfig struct {
	HgBinary string `json:"hg_binary"`
}

// OutputFormat selects how check results are printed.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// OutputConfig controls reporting.
type OutputConfig struct {
	Format OutputFormat `json:"format"`
	// Concurrency bounds how many paths are checked at once.
	Concurrency int `json:"concurrency"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce string `json:"debounce"`
}

// ParseDebounce returns the debounce as a time.Duration.
func (w WatchConfig) ParseDebounce() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level"`
}

// DefaultConfig returns a Config with the strictest permissions.
func DefaultConfig() Config {
	return Config{
		VCS: VCSConfig{
			HgBinary: vcs.DefaultHgBinary,
		},
		Output: OutputConfig{
			Format:      OutputText,
			Concurrency: 4,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output format %q (want text, json or yaml)", c.Output.Format)
	}
	if c.Output.Concurrency < 1 {
		return fmt.Errorf("output concurrency must be at least 1, got %d", c.Output.Concurrency)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.VCS.HgBinary == "" {
		return fmt.Errorf("vcs.hg_binary must not be empty")
	}
	return nil
}
