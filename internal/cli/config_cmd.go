package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alanmeadows/cleancheck/internal/config"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cleancheck configuration",
	Long:  `Show and modify cleancheck configuration values.`,
}

var (
	configJSONFlag bool
	configUserFlag bool
	configYesFlag  bool
)

func init() {
	configShowCmd.Flags().BoolVar(&configJSONFlag, "json", false, "Output raw JSON without formatting")
	configSetCmd.Flags().BoolVar(&configUserFlag, "user", false, "Write to the user config instead of the repository config")
	configInitCmd.Flags().BoolVar(&configUserFlag, "user", false, "Write to the user config instead of the repository config")
	configInitCmd.Flags().BoolVarP(&configYesFlag, "yes", "y", false, "Write the defaults without prompting")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if configJSONFlag {
			data, err = json.Marshal(appConfig)
		} else {
			data, err = json.MarshalIndent(appConfig, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value using a dotted key path.

The value is written to .cleancheck.jsonc in the repository root, or to the
user config with --user. The file is created if it does not exist. The
resulting configuration is validated before anything is written.

Note: JSONC comments are not preserved on write.`,
	Example: `  cleancheck config set check.allow_staged true
  cleancheck config set output.format json
  cleancheck config set --user vcs.hg_binary /usr/local/bin/hg`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := parseValue(args[1])

		path, err := configTarget()
		if err != nil {
			return usageError{err}
		}
		if err := config.SetValue(path, key, value); err != nil {
			return usageError{err}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", key, value, path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long: `Prompt for the default permissions and output format, then write them to
.cleancheck.jsonc in the repository root, or to the user config with --user.

With --yes the current merged configuration is written without prompting.`,
	Example: `  cleancheck config init
  cleancheck config init --user --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTarget()
		if err != nil {
			return usageError{err}
		}

		cfg := *appConfig
		if !configYesFlag {
			format := string(cfg.Output.Format)
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Allow dirty files by default?").
						Value(&cfg.Check.AllowDirty),
					huh.NewConfirm().
						Title("Allow staged files by default?").
						Value(&cfg.Check.AllowStaged),
					huh.NewConfirm().
						Title("Skip the check outside version control?").
						Value(&cfg.Check.AllowNoVCS),
					huh.NewSelect[string]().
						Title("Output format").
						Options(
							huh.NewOption("Text", string(config.OutputText)),
							huh.NewOption("JSON", string(config.OutputJSON)),
							huh.NewOption("YAML", string(config.OutputYAML)),
						).
						Value(&format),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("form cancelled: %w", err)
			}
			cfg.Output.Format = config.OutputFormat(format)
		}

		if err := cfg.Validate(); err != nil {
			return usageError{err}
		}
		if err := config.WriteFile(path, &cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

// parseValue tries bool, then integer, then float, then falls back to string.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// configTarget returns the file that set and init write to.
func configTarget() (string, error) {
	if configUserFlag {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("getting config dir: %w", err)
		}
		return filepath.Join(dir, "cleancheck", config.FileName), nil
	}
	return config.RepoConfigPath()
}
