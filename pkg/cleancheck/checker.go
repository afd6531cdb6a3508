// Package cleancheck decides whether a working directory is safe to run
// destructive operations against. It detects a Git or Mercurial repository
// governing a path, sorts changed files into staged and dirty sets, and
// fails unless the caller's Options permit what it found.
//
// Mercurial is detected by existence only: when no Git repository can be
// opened for the path, no per-file policy is enforced.
package cleancheck

import (
	"log/slog"

	"github.com/alanmeadows/cleancheck/pkg/vcs"
)

// Options are the caller's permissions. The zero value is the strictest mode.
type Options struct {
	// AllowDirty permits unstaged modifications, deletions, conflicts and
	// untracked files. Dirty files are then neither reported nor collected.
	AllowDirty bool `json:"allow_dirty" yaml:"allow_dirty"`

	// AllowNoVCS disables every check, including whether path exists.
	AllowNoVCS bool `json:"allow_no_vcs" yaml:"allow_no_vcs"`

	// AllowStaged permits changes recorded in the index.
	AllowStaged bool `json:"allow_staged" yaml:"allow_staged"`
}

// FileSets holds the offending files in VCS enumeration order.
type FileSets struct {
	DirtyFiles  []string `json:"dirty_files" yaml:"dirty_files"`
	StagedFiles []string `json:"staged_files" yaml:"staged_files"`
}

// Empty reports whether neither set has files.
func (f FileSets) Empty() bool {
	return len(f.DirtyFiles) == 0 && len(f.StagedFiles) == 0
}

// Checker runs detection and classification. It holds no mutable state, so
// one Checker may serve concurrent checks of different paths.
type Checker struct {
	registry   *vcs.Registry
	discoverer vcs.Discoverer
}

// CheckerOption customizes a Checker.
type CheckerOption func(*Checker)

// WithRegistry replaces the providers used for detection.
func WithRegistry(r *vcs.Registry) CheckerOption {
	return func(c *Checker) {
		c.registry = r
	}
}

// WithDiscoverer replaces the source of per-file status.
func WithDiscoverer(d vcs.Discoverer) CheckerOption {
	return func(c *Checker) {
		c.discoverer = d
	}
}

// WithHgBinary sets the Mercurial executable used for detection.
func WithHgBinary(binary string) CheckerOption {
	return func(c *Checker) {
		c.registry = vcs.DefaultRegistry(binary)
	}
}

// New creates a Checker that detects Git then Mercurial and reads status via Git.
func New(opts ...CheckerOption) *Checker {
	c := &Checker{
		registry:   vcs.DefaultRegistry(vcs.DefaultHgBinary),
		discoverer: vcs.NewGit(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DetectProvider returns the name of the first VCS that governs path.
func (c *Checker) DetectProvider(path string) (string, bool) {
	p, ok := c.registry.Detect(path, path)
	if !ok {
		return "", false
	}
	return p.Name(), true
}

// Detect reports whether path is governed by a supported VCS.
func (c *Checker) Detect(path string) bool {
	_, ok := c.DetectProvider(path)
	return ok
}

// Classify reads the status of the Git repository governing path and
// collects the files opts does not permit. If no Git repository can be
// opened both sets are empty.
func (c *Checker) Classify(path string, opts Options) (FileSets, error) {
	sets := FileSets{
		DirtyFiles:  []string{},
		StagedFiles: []string{},
	}

	repo, err := c.discoverer.Discover(path)
	if err != nil {
		slog.Debug("no repository to enumerate, skipping file classification", "path", path, "error", err)
		return sets, nil
	}

	statuses, err := repo.Statuses()
	if err != nil {
		return sets, &ToolingError{Op: "reading status of " + repo.WorkdirRoot(), Err: err}
	}

	for _, st := range statuses {
		switch {
		case st.Status.IsCurrent():
		case st.Status.IsStaged():
			if !opts.AllowStaged {
				sets.StagedFiles = append(sets.StagedFiles, st.Path)
			}
		default:
			if !opts.AllowDirty {
				sets.DirtyFiles = append(sets.DirtyFiles, st.Path)
			}
		}
	}
	return sets, nil
}

// Check verifies that path is under version control and holds no files
// opts does not permit. It returns nil, ErrNoVCS, a *DisallowedFilesError
// or a *ToolingError.
func (c *Checker) Check(path string, opts Options) error {
	if opts.AllowNoVCS {
		slog.Debug("vcs check disabled", "path", path)
		return nil
	}

	name, ok := c.DetectProvider(path)
	if !ok {
		return ErrNoVCS
	}
	slog.Debug("repository detected", "path", path, "vcs", name)

	if opts.AllowDirty && opts.AllowStaged {
		slog.Debug("dirty and staged files allowed, skipping enumeration", "path", path)
		return nil
	}

	sets, err := c.Classify(path, opts)
	if err != nil {
		return err
	}
	slog.Debug("classified files", "path", path, "dirty", len(sets.DirtyFiles), "staged", len(sets.StagedFiles))

	if sets.Empty() {
		return nil
	}
	return &DisallowedFilesError{
		DirtyFiles:  sets.DirtyFiles,
		StagedFiles: sets.StagedFiles,
	}
}

var defaultChecker = New()

// CheckVersionControl runs Check with the default Checker.
func CheckVersionControl(path string, opts Options) error {
	return defaultChecker.Check(path, opts)
}

// Detect runs Detect with the default Checker.
func Detect(path string) bool {
	return defaultChecker.Detect(path)
}
