package vcs

import "strings"

// Status is the set of change flags a VCS reports for a single file.
// The zero value means the file matches HEAD and the index.
type Status uint16

const (
	StatusCurrent Status = 0

	StatusIndexNew Status = 1 << iota
	StatusIndexModified
	StatusIndexDeleted
	StatusIndexRenamed
	StatusIndexTypeChange

	StatusWorktreeNew
	StatusWorktreeModified
	StatusWorktreeDeleted
	StatusWorktreeRenamed
	StatusWorktreeTypeChange

	StatusConflicted
	StatusIgnored
)

// indexMask covers every flag that describes a change recorded in the index.
const indexMask = StatusIndexNew | StatusIndexModified | StatusIndexDeleted |
	StatusIndexRenamed | StatusIndexTypeChange

var statusNames = []struct {
	flag Status
	name string
}{
	{StatusIndexNew, "index-new"},
	{StatusIndexModified, "index-modified"},
	{StatusIndexDeleted, "index-deleted"},
	{StatusIndexRenamed, "index-renamed"},
	{StatusIndexTypeChange, "index-typechange"},
	{StatusWorktreeNew, "worktree-new"},
	{StatusWorktreeModified, "worktree-modified"},
	{StatusWorktreeDeleted, "worktree-deleted"},
	{StatusWorktreeRenamed, "worktree-renamed"},
	{StatusWorktreeTypeChange, "worktree-typechange"},
	{StatusConflicted, "conflicted"},
	{StatusIgnored, "ignored"},
}

// IsCurrent reports whether the file has no changes at all.
func (s Status) IsCurrent() bool {
	return s == StatusCurrent
}

// IsStaged reports whether the file carries index changes and nothing else.
// A file that is staged and then modified again in the worktree is not staged
// in this sense: it still has unstaged edits.
func (s Status) IsStaged() bool {
	return s != StatusCurrent && s&^indexMask == 0
}

func (s Status) String() string {
	if s == StatusCurrent {
		return "current"
	}
	var parts []string
	for _, n := range statusNames {
		if s&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// FileStatus is one entry of a repository status report.
type FileStatus struct {
	// Path is relative to the repository workdir, slash separated.
	Path   string
	Status Status
}
