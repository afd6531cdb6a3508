package cli

import (
	"errors"
	"fmt"

	"github.com/alanmeadows/cleancheck/internal/config"
	"github.com/alanmeadows/cleancheck/internal/logging"
	"github.com/alanmeadows/cleancheck/pkg/cleancheck"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	appConfig  *config.Config

	rootCmd = &cobra.Command{
		Use:   "cleancheck",
		Short: "Check that a working directory is safe to modify",
		Long: `cleancheck verifies that a path is under version control (Git or Mercurial)
and that its working tree holds no uncommitted changes the caller has not
explicitly allowed. Build and code-modification tools run it before
touching files so that nothing unrecoverable is overwritten.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an additional JSONC config file")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return usageError{fmt.Errorf("loading config: %w", err)}
		}
		appConfig = cfg
		logging.Setup(cfg.Log.Level, verbose)
		return nil
	}

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// usageError marks failures caused by bad input rather than repository state.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// errInterrupted is returned when watch is stopped before the check passes.
var errInterrupted = errors.New("interrupted before the working directory became clean")

// ExitCode maps an error returned by Execute to a process exit code:
// 0 on success, 1 when a check failed, 2 for tooling or usage errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		code := 0
		for _, e := range joined.Unwrap() {
			code = max(code, ExitCode(e))
		}
		return code
	}
	if errors.Is(err, errInterrupted) {
		return 1
	}
	switch cleancheck.KindOf(err) {
	case cleancheck.KindNoVCS, cleancheck.KindDisallowedFiles:
		return 1
	default:
		return 2
	}
}
