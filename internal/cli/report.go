package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alanmeadows/cleancheck/internal/config"
	"github.com/alanmeadows/cleancheck/pkg/cleancheck"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Report is the outcome of checking one path, as printed to the user.
type Report struct {
	Path        string   `json:"path" yaml:"path"`
	OK          bool     `json:"ok" yaml:"ok"`
	Kind        string   `json:"kind" yaml:"kind"`
	Message     string   `json:"message,omitempty" yaml:"message,omitempty"`
	DirtyFiles  []string `json:"dirty_files" yaml:"dirty_files"`
	StagedFiles []string `json:"staged_files" yaml:"staged_files"`

	err error
}

func newReport(path string, err error) Report {
	r := Report{
		Path:        path,
		OK:          err == nil,
		Kind:        cleancheck.KindOf(err).String(),
		DirtyFiles:  []string{},
		StagedFiles: []string{},
		err:         err,
	}
	if err != nil {
		r.Message = err.Error()
	}
	var disallowed *cleancheck.DisallowedFilesError
	if errors.As(err, &disallowed) {
		r.DirtyFiles = append(r.DirtyFiles, disallowed.DirtyFiles...)
		r.StagedFiles = append(r.StagedFiles, disallowed.StagedFiles...)
	}
	return r
}

// renderReports writes reports in the requested format.
func renderReports(w io.Writer, format config.OutputFormat, reports []Report) error {
	switch format {
	case config.OutputJSON:
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		return enc.Close()
	default:
		renderText(w, reports)
		return nil
	}
}

// renderText prints each report with remediation guidance.
func renderText(w io.Writer, reports []Report) {
	r := lipgloss.NewRenderer(w)
	okStyle := r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle := r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dirtyStyle := r.NewStyle().Foreground(lipgloss.Color("3"))
	stagedStyle := r.NewStyle().Foreground(lipgloss.Color("6"))
	hintStyle := r.NewStyle().Faint(true)

	for _, rep := range reports {
		if rep.OK {
			fmt.Fprintf(w, "%s %s: ok\n", okStyle.Render("✓"), rep.Path)
			continue
		}

		switch cleancheck.KindOf(rep.err) {
		case cleancheck.KindNoVCS:
			fmt.Fprintf(w, "%s %s: no version control system found\n", failStyle.Render("✗"), rep.Path)
			fmt.Fprintln(w, hintStyle.Render("  Run `git init` or `hg init` first, or pass --allow-no-vcs to skip this check."))

		case cleancheck.KindDisallowedFiles:
			fmt.Fprintf(w, "%s %s: %d files in the working directory contain changes that were not yet committed into version control:\n",
				failStyle.Render("✗"), rep.Path, len(rep.DirtyFiles)+len(rep.StagedFiles))
			for _, f := range rep.DirtyFiles {
				fmt.Fprintf(w, "    %s %s\n", f, dirtyStyle.Render("(dirty)"))
			}
			for _, f := range rep.StagedFiles {
				fmt.Fprintf(w, "    %s %s\n", f, stagedStyle.Render("(staged)"))
			}
			fmt.Fprintln(w, hintStyle.Render("  "+remediation(rep)))

		default:
			fmt.Fprintf(w, "%s %s: %s\n", failStyle.Render("✗"), rep.Path, rep.Message)
		}
	}
}

// remediation names only the override flags that would help.
func remediation(rep Report) string {
	var flags []string
	if len(rep.DirtyFiles) > 0 {
		flags = append(flags, "--allow-dirty")
	}
	if len(rep.StagedFiles) > 0 {
		flags = append(flags, "--allow-staged")
	}
	return fmt.Sprintf("Commit the changes, pass %s to proceed anyway, or clean the working directory.",
		strings.Join(flags, " and "))
}
