package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alanmeadows/cleancheck/internal/testutil"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitDiscover(t *testing.T) {
	g := NewGit()

	t.Run("repository root", func(t *testing.T) {
		r := testutil.InitRepo(t)
		repo, err := g.Discover(r.Dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Clean(r.Dir), repo.WorkdirRoot())
	})

	t.Run("nested subdirectory", func(t *testing.T) {
		r := testutil.InitRepo(t)
		sub := r.Path("a/b/c")
		require.NoError(t, os.MkdirAll(sub, 0755))

		repo, err := g.Discover(sub)
		require.NoError(t, err)
		assert.Equal(t, filepath.Clean(r.Dir), repo.WorkdirRoot())
	})

	t.Run("plain directory", func(t *testing.T) {
		_, err := g.Discover(t.TempDir())
		assert.ErrorIs(t, err, ErrRepositoryNotFound)
	})

	t.Run("missing path inside repository", func(t *testing.T) {
		r := testutil.InitRepo(t)
		_, err := g.Discover(r.Path("does-not-exist"))
		assert.ErrorIs(t, err, ErrRepositoryNotFound)
	})
}

func TestGitDetect(t *testing.T) {
	g := NewGit()

	r := testutil.InitRepo(t)
	r.CommitFiles(map[string]string{".gitignore": "target/\n*.log\n"})
	require.NoError(t, os.MkdirAll(r.Path("src"), 0755))
	require.NoError(t, os.MkdirAll(r.Path("target/debug"), 0755))
	r.WriteFile("out.log", "log line\n")

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"root", r.Dir, true},
		{"tracked subdirectory", r.Path("src"), true},
		{"ignored directory", r.Path("target"), false},
		{"inside ignored directory", r.Path("target/debug"), false},
		{"ignored file", r.Path("out.log"), false},
		{"missing path", r.Path("nope"), false},
		{"outside any repository", t.TempDir(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.Detect(tt.path, tt.path))
		})
	}
}

func TestGitRootIsNeverIgnored(t *testing.T) {
	parent := testutil.InitRepo(t)
	parent.CommitFiles(map[string]string{".gitignore": "nested/\n"})

	// A repository living in a directory its parent ignores is still detected.
	nested := testutil.InitRepoAt(t, parent.Path("nested"))
	assert.True(t, NewGit().Detect(nested.Dir, nested.Dir))
}

func TestGitIsPathIgnored(t *testing.T) {
	r := testutil.InitRepo(t)
	r.CommitFiles(map[string]string{
		".gitignore":     "build/\n",
		"sub/.gitignore": "*.tmp\n",
	})
	require.NoError(t, os.MkdirAll(r.Path("build"), 0755))

	repo, err := NewGit().Discover(r.Dir)
	require.NoError(t, err)

	ignored, err := repo.IsPathIgnored(r.Path("build"))
	require.NoError(t, err)
	assert.True(t, ignored)

	ignored, err = repo.IsPathIgnored(r.Path("sub/x.tmp"))
	require.NoError(t, err)
	assert.True(t, ignored)

	ignored, err = repo.IsPathIgnored(r.Path("x.tmp"))
	require.NoError(t, err)
	assert.False(t, ignored, "nested .gitignore only applies below its directory")

	ignored, err = repo.IsPathIgnored(r.Dir)
	require.NoError(t, err)
	assert.False(t, ignored)

	ignored, err = repo.IsPathIgnored(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ignored, "paths outside the workdir are not ignored")
}

func TestGitIsPathIgnoredSources(t *testing.T) {
	tests := []struct {
		name      string
		hostFiles map[string]string
		repoFiles map[string]string
		xdg       string
		file      string
		ignored   bool
	}{
		{
			name:      "info exclude",
			repoFiles: map[string]string{".git/info/exclude": "secret.env\n"},
			file:      "secret.env",
			ignored:   true,
		},
		{
			name: "system excludesfile",
			hostFiles: map[string]string{
				"/etc/gitconfig": "[core]\n\texcludesfile = /etc/gitignore\n",
				"/etc/gitignore": "*.sys\n",
			},
			file:    "driver.sys",
			ignored: true,
		},
		{
			name: "global excludesfile",
			hostFiles: map[string]string{
				"/home/dev/.gitconfig":        "[core]\n\texcludesfile = /home/dev/.gitignore_global\n",
				"/home/dev/.gitignore_global": "# editor files\n.DS_Store\n",
			},
			file:    ".DS_Store",
			ignored: true,
		},
		{
			name:      "default global file under home",
			hostFiles: map[string]string{"/home/dev/.config/git/ignore": "*.swp\n"},
			file:      "main.go.swp",
			ignored:   true,
		},
		{
			name:      "default global file under XDG_CONFIG_HOME",
			hostFiles: map[string]string{"/xdg/git/ignore": "*.bak\n"},
			xdg:       "/xdg",
			file:      "notes.bak",
			ignored:   true,
		},
		{
			name: "configured excludesfile replaces the default global file",
			hostFiles: map[string]string{
				"/home/dev/.gitconfig":         "[core]\n\texcludesfile = /home/dev/global\n",
				"/home/dev/global":             "*.a\n",
				"/home/dev/.config/git/ignore": "*.b\n",
			},
			file:    "x.b",
			ignored: false,
		},
		{
			name:    "no excludes",
			file:    "plain.txt",
			ignored: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", "/home/dev")
			t.Setenv("XDG_CONFIG_HOME", tt.xdg)

			// host stands in for the machine's filesystem holding git configuration.
			host := memfs.New()
			for name, content := range tt.hostFiles {
				require.NoError(t, util.WriteFile(host, name, []byte(content), 0644))
			}

			r := testutil.InitRepo(t)
			r.CommitFiles(map[string]string{"README": "readme\n"})
			for name, content := range tt.repoFiles {
				r.WriteFile(name, content)
			}
			r.WriteFile(tt.file, "content\n")

			repo, err := (&Git{configFS: host}).Discover(r.Dir)
			require.NoError(t, err)

			ignored, err := repo.IsPathIgnored(r.Path(tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.ignored, ignored)

			statuses, err := repo.Statuses()
			require.NoError(t, err)
			if tt.ignored {
				assert.Empty(t, statuses, "ignored files are not part of the status")
			} else {
				assert.Equal(t, []FileStatus{{Path: tt.file, Status: StatusWorktreeNew}}, statuses)
			}
		})
	}
}

func TestGitStatuses(t *testing.T) {
	r := testutil.InitRepo(t)
	r.CommitFiles(map[string]string{
		".gitignore": "*.log\n",
		"a.txt":      "a\n",
		"b.txt":      "b\n",
		"c.txt":      "c\n",
		"d.txt":      "d\n",
	})

	r.WriteFile("a.txt", "a changed and staged\n")
	r.Add("a.txt")
	r.WriteFile("b.txt", "b changed but not staged\n")
	r.WriteFile("c.txt", "c staged\n")
	r.Add("c.txt")
	r.WriteFile("c.txt", "c staged then changed again\n")
	r.Remove("d.txt")
	r.WriteFile("e.txt", "untracked\n")
	r.WriteFile("f.txt", "new and staged\n")
	r.Add("f.txt")
	r.WriteFile("debug.log", "ignored\n")

	repo, err := NewGit().Discover(r.Dir)
	require.NoError(t, err)

	statuses, err := repo.Statuses()
	require.NoError(t, err)

	got := make(map[string]Status)
	var order []string
	for _, s := range statuses {
		if s.Status.IsCurrent() {
			continue
		}
		got[s.Path] = s.Status
		order = append(order, s.Path)
	}

	assert.Equal(t, map[string]Status{
		"a.txt": StatusIndexModified,
		"b.txt": StatusWorktreeModified,
		"c.txt": StatusIndexModified | StatusWorktreeModified,
		"d.txt": StatusWorktreeDeleted,
		"e.txt": StatusWorktreeNew,
		"f.txt": StatusIndexNew,
	}, got)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt", "f.txt"}, order)

	again, err := repo.Statuses()
	require.NoError(t, err)
	assert.Equal(t, statuses, again)
}

func TestGitStatusesCleanRepository(t *testing.T) {
	r := testutil.InitRepo(t)
	r.CommitFiles(map[string]string{"README.md": "# readme\n"})

	repo, err := NewGit().Discover(r.Dir)
	require.NoError(t, err)

	statuses, err := repo.Statuses()
	require.NoError(t, err)
	for _, s := range statuses {
		assert.True(t, s.Status.IsCurrent(), "unexpected change %s: %s", s.Path, s.Status)
	}
}
