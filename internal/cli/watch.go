package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alanmeadows/cleancheck/internal/watch"
	"github.com/alanmeadows/cleancheck/pkg/vcs"
	"github.com/spf13/cobra"
)

var watchDebounce string

func init() {
	addPermissionFlags(watchCmd)
	watchCmd.Flags().StringVar(&watchDebounce, "debounce", "", "Quiet period before re-checking, e.g. 250ms (default from config)")
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Wait until a path is clean",
	Long: `Run the check, then re-run it whenever files in the repository change,
until it passes. Useful for blocking a script until the user has committed
their work.

Changes are debounced: the check reruns only once the tree has been quiet for
the debounce period. Directories matched by the repository's ignore rules are
not watched.

Exits with 0 once the check passes and 1 if interrupted first.`,
	Example: `  cleancheck watch
  cleancheck watch ./service --allow-staged --debounce 1s`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		opts := resolveOptions(cmd)

		debounce := appConfig.Watch.ParseDebounce()
		if cmd.Flags().Changed("debounce") {
			cfg := appConfig.Watch
			cfg.Debounce = watchDebounce
			debounce = cfg.ParseDebounce()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		checker := newChecker()
		wcfg := watch.Config{
			Root:     path,
			Debounce: debounce,
			Check:    func() error { return checker.Check(path, opts) },
			OnResult: func(err error) {
				renderText(cmd.OutOrStdout(), []Report{newReport(path, err)})
			},
		}

		// Watch the whole working tree: any file in it can change the result.
		if repo, err := vcs.NewGit().Discover(path); err == nil {
			wcfg.Root = repo.WorkdirRoot()
			wcfg.Skip = func(dir string) bool {
				ignored, err := repo.IsPathIgnored(dir)
				return err == nil && ignored
			}
		}
		slog.Debug("watching", "root", wcfg.Root, "debounce", debounce)

		err := watch.Run(ctx, wcfg)
		if errors.Is(err, context.Canceled) {
			return errInterrupted
		}
		if err != nil {
			return fmt.Errorf("watching %s: %w", filepath.Clean(path), err)
		}
		return nil
	},
}
