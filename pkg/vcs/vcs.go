// Package vcs detects version control systems and reads per-file status
// from them. Git is accessed through go-git; Mercurial is only probed for
// existence by running the hg executable.
package vcs

//go:generate mockgen -source=vcs.go -destination=vcsmock/mock_vcs.go -package=vcsmock

import (
	"errors"
	"fmt"
)

// ErrRepositoryNotFound is returned by a Discoverer when no repository
// governs the requested path.
var ErrRepositoryNotFound = errors.New("repository not found")

// Provider reports whether a path is governed by one version control system.
type Provider interface {
	// Name returns the short identifier of the VCS (e.g., "git", "hg").
	Name() string

	// Detect returns true if path is inside a repository of this VCS.
	// cwd is the working directory used for any process the provider spawns.
	// Detect never returns an error: every failure means "not detected".
	Detect(path, cwd string) bool
}

// Discoverer opens the repository that governs a path, searching parent
// directories as needed.
type Discoverer interface {
	Discover(path string) (Repository, error)
}

// Repository is an opened repository that can report file status.
type Repository interface {
	// WorkdirRoot returns the absolute root of the working directory.
	WorkdirRoot() string

	// IsPathIgnored reports whether path is excluded by the repository's ignore rules.
	IsPathIgnored(path string) (bool, error)

	// Statuses lists every non-ignored file with changes, untracked files included.
	Statuses() ([]FileStatus, error)
}

// Registry holds providers in detection priority order.
type Registry struct {
	providers []Provider
}

// NewRegistry creates a registry with the given providers, highest priority first.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// DefaultRegistry returns a registry that tries Git first and Mercurial second.
func DefaultRegistry(hgBinary string) *Registry {
	return NewRegistry(NewGit(), NewHg(hgBinary))
}

// Register appends a provider with the lowest priority.
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Providers returns the registered providers in priority order.
func (r *Registry) Providers() []Provider {
	return r.providers
}

// Detect returns the first provider that recognizes path.
func (r *Registry) Detect(path, cwd string) (Provider, bool) {
	for _, p := range r.providers {
		if p.Detect(path, cwd) {
			return p, true
		}
	}
	return nil, false
}

// Get looks up a registered provider by its Name().
func (r *Registry) Get(name string) (Provider, error) {
	for _, p := range r.providers {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no registered provider with name: %s", name)
}
