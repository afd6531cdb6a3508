package cli

import (
	"errors"
	"fmt"

	"github.com/alanmeadows/cleancheck/internal/config"
	"github.com/alanmeadows/cleancheck/pkg/cleancheck"
	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/cobra"
)

var (
	checkAllowDirty  bool
	checkAllowNoVCS  bool
	checkAllowStaged bool
	checkFormat      string
)

func init() {
	addPermissionFlags(checkCmd)
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "Output format: text, json or yaml (default from config)")
}

// addPermissionFlags registers the three permission flags shared by check and watch.
func addPermissionFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&checkAllowDirty, "allow-dirty", false, "Allow unstaged changes and untracked files")
	cmd.Flags().BoolVar(&checkAllowNoVCS, "allow-no-vcs", false, "Skip all checks, even whether the path is under version control")
	cmd.Flags().BoolVar(&checkAllowStaged, "allow-staged", false, "Allow changes staged in the index")
}

var checkCmd = &cobra.Command{
	Use:   "check [path...]",
	Short: "Check that paths are under version control and clean",
	Long: `Check that each path is governed by a Git or Mercurial repository and that
the repository has no staged or dirty files beyond what the flags allow.

Dirty files are unstaged modifications, deletions, conflicts and untracked
files. Staged files carry changes recorded in the index only. Files matched by
the repository's ignore rules are never reported.

Mercurial repositories are detected but their files are not inspected.

Paths are checked concurrently and reported in argument order. The exit code
is 0 when every path passes, 1 when any path fails the check, and 2 on tooling
or usage errors.`,
	Example: `  cleancheck check
  cleancheck check ./service --allow-staged
  cleancheck check a b c --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := resolveOptions(cmd)
		format, err := resolveFormat(cmd)
		if err != nil {
			return err
		}

		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}

		reports := runChecks(newChecker(), paths, opts, appConfig.Output.Concurrency)
		if err := renderReports(cmd.OutOrStdout(), format, reports); err != nil {
			return err
		}
		return reportsError(reports)
	},
}

// resolveOptions starts from the configured permissions and applies the
// flags the user set explicitly.
func resolveOptions(cmd *cobra.Command) cleancheck.Options {
	opts := appConfig.Check.Options()
	if cmd.Flags().Changed("allow-dirty") {
		opts.AllowDirty = checkAllowDirty
	}
	if cmd.Flags().Changed("allow-no-vcs") {
		opts.AllowNoVCS = checkAllowNoVCS
	}
	if cmd.Flags().Changed("allow-staged") {
		opts.AllowStaged = checkAllowStaged
	}
	return opts
}

func resolveFormat(cmd *cobra.Command) (config.OutputFormat, error) {
	format := appConfig.Output.Format
	if cmd.Flags().Changed("format") {
		format = config.OutputFormat(checkFormat)
	}
	switch format {
	case config.OutputText, config.OutputJSON, config.OutputYAML:
		return format, nil
	default:
		return "", usageError{fmt.Errorf("invalid format %q (want text, json or yaml)", format)}
	}
}

func newChecker() *cleancheck.Checker {
	return cleancheck.New(cleancheck.WithHgBinary(appConfig.VCS.HgBinary))
}

// runChecks checks paths concurrently, at most concurrency at a time.
// Results keep the order of paths.
func runChecks(checker *cleancheck.Checker, paths []string, opts cleancheck.Options, concurrency int) []Report {
	mapper := iter.Mapper[string, Report]{MaxGoroutines: concurrency}
	return mapper.Map(paths, func(path *string) Report {
		return newReport(*path, checker.Check(*path, opts))
	})
}

// reportsError joins the failures so ExitCode can pick the most severe.
func reportsError(reports []Report) error {
	var errs []error
	for _, r := range reports {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.err))
		}
	}
	return errors.Join(errs...)
}
