// Package testutil builds throwaway git repositories for tests without
// requiring a git executable.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Repo is a non-bare git repository in a temporary directory.
type Repo struct {
	t    testing.TB
	Dir  string
	repo *git.Repository
	wt   *git.Worktree
}

// InitRepo creates an empty repository in a fresh temp directory.
func InitRepo(t testing.TB) *Repo {
	t.Helper()
	return InitRepoAt(t, t.TempDir())
}

// InitRepoAt creates an empty repository in dir, creating dir if needed.
func InitRepoAt(t testing.TB, dir string) *Repo {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0755))
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err, "git init %s", dir)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	return &Repo{t: t, Dir: dir, repo: repo, wt: wt}
}

// Path returns the absolute path of name inside the repository.
func (r *Repo) Path(name string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(name))
}

// WriteFile writes content to name, creating parent directories.
func (r *Repo) WriteFile(name, content string) {
	r.t.Helper()
	p := r.Path(name)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(r.t, os.WriteFile(p, []byte(content), 0644))
}

// Remove deletes name from the worktree.
func (r *Repo) Remove(name string) {
	r.t.Helper()
	require.NoError(r.t, os.Remove(r.Path(name)))
}

// Add stages the given paths.
func (r *Repo) Add(names ...string) {
	r.t.Helper()
	for _, name := range names {
		_, err := r.wt.Add(name)
		require.NoError(r.t, err, "git add %s", name)
	}
}

// Commit records the index as a new commit.
func (r *Repo) Commit(msg string) {
	r.t.Helper()
	_, err := r.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@test.com",
			When:  time.Now(),
		},
	})
	require.NoError(r.t, err, "git commit")
}

// CommitFiles writes, stages and commits each file in one commit.
func (r *Repo) CommitFiles(files map[string]string) {
	r.t.Helper()
	for name, content := range files {
		r.WriteFile(name, content)
		r.Add(name)
	}
	r.Commit("add files")
}
