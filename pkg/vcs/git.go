package vcs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Git implements Provider and Discoverer on top of go-git.
type Git struct {
	// configFS is where system and global git configuration is read from.
	configFS billy.Filesystem
}

// NewGit creates a Git provider that reads git configuration from the host.
func NewGit() *Git {
	return &Git{configFS: osfs.New("/")}
}

func (g *Git) Name() string {
	return "git"
}

// Discover opens the non-bare repository governing path, walking up parent
// directories. A path that does not exist is never inside a repository.
func (g *Git) Discover(path string) (Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRepositoryNotFound, abs, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, abs)
		}
		return nil, fmt.Errorf("opening git repository at %s: %w", abs, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening git worktree for %s: %w", abs, err)
	}
	// Status only consults repository ignore files and Excludes.
	wt.Excludes = append(userPatterns(g.configFS), wt.Excludes...)

	return &gitRepository{
		worktree: wt,
		root:     filepath.Clean(wt.Filesystem.Root()),
	}, nil
}

// Detect reports whether path is inside a git repository and not excluded by
// its ignore rules. The workdir root itself is never considered ignored.
func (g *Git) Detect(path, _ string) bool {
	repo, err := g.Discover(path)
	if err != nil {
		slog.Debug("git discovery failed", "path", path, "error", err)
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if repo.WorkdirRoot() == filepath.Clean(abs) {
		return true
	}

	ignored, err := repo.IsPathIgnored(abs)
	if err != nil {
		slog.Debug("git ignore check failed, treating path as tracked", "path", abs, "error", err)
		return true
	}
	if ignored {
		slog.Debug("path is ignored by enclosing git repository", "path", abs, "root", repo.WorkdirRoot())
	}
	return !ignored
}

type gitRepository struct {
	worktree *git.Worktree
	root     string
}

func (r *gitRepository) WorkdirRoot() string {
	return r.root
}

func (r *gitRepository) IsPathIgnored(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", path, err)
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}

	patterns, err := r.ignorePatterns()
	if err != nil {
		return false, err
	}

	isDir := false
	if info, err := os.Stat(abs); err == nil {
		isDir = info.IsDir()
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	return gitignore.NewMatcher(patterns).Match(parts, isDir), nil
}

// userPatterns loads the system excludes and the global excludes. When
// core.excludesfile is not configured, git's default global file
// $XDG_CONFIG_HOME/git/ignore (or ~/.config/git/ignore) applies.
func userPatterns(fs billy.Filesystem) []gitignore.Pattern {
	if fs == nil {
		fs = osfs.New("/")
	}

	var patterns []gitignore.Pattern
	if ps, err := gitignore.LoadSystemPatterns(fs); err == nil {
		patterns = append(patterns, ps...)
	}

	global, err := gitignore.LoadGlobalPatterns(fs)
	if err != nil {
		slog.Debug("reading global git excludes failed", "error", err)
	}
	if len(global) == 0 {
		global = defaultGlobalPatterns(fs)
	}
	return append(patterns, global...)
}

func defaultGlobalPatterns(fs billy.Filesystem) []gitignore.Pattern {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		dir = filepath.Join(home, ".config")
	}

	data, err := util.ReadFile(fs, fs.Join(dir, "git", "ignore"))
	if err != nil {
		return nil
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns
}

// ignorePatterns returns Excludes followed by the repository's ignore files.
// Later patterns take precedence in the matcher.
func (r *gitRepository) ignorePatterns() ([]gitignore.Pattern, error) {
	repoPatterns, err := gitignore.ReadPatterns(r.worktree.Filesystem, nil)
	if err != nil {
		return nil, fmt.Errorf("reading ignore patterns in %s: %w", r.root, err)
	}
	patterns := make([]gitignore.Pattern, 0, len(r.worktree.Excludes)+len(repoPatterns))
	patterns = append(patterns, r.worktree.Excludes...)
	return append(patterns, repoPatterns...), nil
}

// Statuses returns the worktree status sorted by path.
func (r *gitRepository) Statuses() ([]FileStatus, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("reading git status in %s: %w", r.root, err)
	}

	paths := make([]string, 0, len(status))
	for p := range status {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	result := make([]FileStatus, 0, len(paths))
	for _, p := range paths {
		fs := status[p]
		result = append(result, FileStatus{
			Path:   p,
			Status: fromGitStatus(fs.Staging, fs.Worktree),
		})
	}
	return result, nil
}

// fromGitStatus maps go-git's two-column status codes onto Status flags.
func fromGitStatus(staging, worktree git.StatusCode) Status {
	if staging == git.Untracked || worktree == git.Untracked {
		return StatusWorktreeNew
	}

	var s Status
	switch staging {
	case git.Added, git.Copied:
		s |= StatusIndexNew
	case git.Modified:
		s |= StatusIndexModified
	case git.Deleted:
		s |= StatusIndexDeleted
	case git.Renamed:
		s |= StatusIndexRenamed
	case git.UpdatedButUnmerged:
		s |= StatusConflicted
	}

	switch worktree {
	case git.Added:
		s |= StatusWorktreeNew
	case git.Modified:
		s |= StatusWorktreeModified
	case git.Deleted:
		s |= StatusWorktreeDeleted
	case git.Renamed:
		s |= StatusWorktreeRenamed
	case git.UpdatedButUnmerged:
		s |= StatusConflicted
	}
	return s
}
