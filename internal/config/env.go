package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "CLEANCHECK"

// envOverrides uses pointers so unset variables leave the config untouched.
type envOverrides struct {
	AllowDirty  *bool   `split_words:"true"`
	AllowNoVCS  *bool   `split_words:"true"`
	AllowStaged *bool   `split_words:"true"`
	HgBinary    *string `split_words:"true"`
	Format      *string
	LogLevel    *string `split_words:"true"`
}

// applyEnvOverrides applies CLEANCHECK_* environment variables to the config.
func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	if env.AllowDirty != nil {
		cfg.Check.AllowDirty = *env.AllowDirty
	}
	if env.AllowNoVCS != nil {
		cfg.Check.AllowNoVCS = *env.AllowNoVCS
	}
	if env.AllowStaged != nil {
		cfg.Check.AllowStaged = *env.AllowStaged
	}
	if env.HgBinary != nil {
		cfg.VCS.HgBinary = *env.HgBinary
	}
	if env.Format != nil {
		cfg.Output.Format = OutputFormat(*env.Format)
	}
	if env.LogLevel != nil {
		cfg.Log.Level = *env.LogLevel
	}
	return nil
}
