package cleancheck

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNoVCS is returned when no supported repository governs the checked path.
var ErrNoVCS = errors.New("no version control system detected")

// DisallowedFilesError reports files in categories the caller did not permit.
// At least one of the lists is non-empty.
type DisallowedFilesError struct {
	DirtyFiles  []string
	StagedFiles []string
}

func (e *DisallowedFilesError) Error() string {
	return fmt.Sprintf("disallowed files found: %d dirty, %d staged", len(e.DirtyFiles), len(e.StagedFiles))
}

// Equal compares both file lists element by element.
func (e *DisallowedFilesError) Equal(other *DisallowedFilesError) bool {
	if e == nil || other == nil {
		return e == other
	}
	return slices.Equal(e.DirtyFiles, other.DirtyFiles) && slices.Equal(e.StagedFiles, other.StagedFiles)
}

// ToolingError wraps a failure of the underlying VCS implementation, such as
// a corrupted repository or a permission problem while reading status.
type ToolingError struct {
	Op  string
	Err error
}

func (e *ToolingError) Error() string {
	return fmt.Sprintf("vcs tooling error: %s: %v", e.Op, e.Err)
}

func (e *ToolingError) Unwrap() error {
	return e.Err
}

// Kind classifies the result of a check.
type Kind int

const (
	// KindNone means the check passed.
	KindNone Kind = iota
	KindNoVCS
	KindDisallowedFiles
	KindTooling
	// KindUnknown is any error not produced by this package.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindNoVCS:
		return "no_vcs"
	case KindDisallowedFiles:
		return "disallowed_files"
	case KindTooling:
		return "tooling"
	default:
		return "unknown"
	}
}

// KindOf reports which kind of check failure err is.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrNoVCS) {
		return KindNoVCS
	}
	var disallowed *DisallowedFilesError
	if errors.As(err, &disallowed) {
		return KindDisallowedFiles
	}
	var tooling *ToolingError
	if errors.As(err, &tooling) {
		return KindTooling
	}
	return KindUnknown
}
