package vcs

import (
	"log/slog"
	"os/exec"
)

// DefaultHgBinary is the Mercurial executable looked up on PATH.
const DefaultHgBinary = "hg"

// Hg detects Mercurial repositories by running `hg --cwd <path> root`.
// It offers no per-file status.
type Hg struct {
	Binary string
}

// NewHg creates a Mercurial provider. An empty binary means DefaultHgBinary.
func NewHg(binary string) *Hg {
	if binary == "" {
		binary = DefaultHgBinary
	}
	return &Hg{Binary: binary}
}

func (h *Hg) Name() string {
	return "hg"
}

// Detect runs the root query with its working directory set to cwd.
// Only the exit status matters.
func (h *Hg) Detect(path, cwd string) bool {
	binary := h.Binary
	if binary == "" {
		binary = DefaultHgBinary
	}

	cmd := exec.Command(binary, "--cwd", path, "root")
	cmd.Dir = cwd
	if out, err := cmd.CombinedOutput(); err != nil {
		slog.Debug("hg root failed", "path", path, "error", err, "output", string(out))
		return false
	}
	return true
}
