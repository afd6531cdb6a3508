package cli

import (
	"errors"
	"fmt"

	"github.com/alanmeadows/cleancheck/pkg/cleancheck"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect [path...]",
	Short: "Show which version control system governs each path",
	Long: `Report whether each path is inside a Git or Mercurial working tree.

Git is tried first. A path matched by the enclosing repository's ignore rules
is not considered governed. Mercurial is probed by running "hg root", so it is
only found when the hg executable is available.

Exits with 1 when any path is not under version control.`,
	Example: `  cleancheck detect
  cleancheck detect ./vendor ./src`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}

		checker := newChecker()
		rows := make([][]string, 0, len(paths))
		var errs []error
		for _, p := range paths {
			name, ok := checker.DetectProvider(p)
			if !ok {
				name = "none"
				errs = append(errs, fmt.Errorf("%s: %w", p, cleancheck.ErrNoVCS))
			}
			rows = append(rows, []string{p, name})
		}

		r := lipgloss.NewRenderer(cmd.OutOrStdout())
		headerStyle := r.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := r.NewStyle().Padding(0, 1)

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("PATH", "VCS").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(cmd.OutOrStdout(), t)
		return errors.Join(errs...)
	},
}
