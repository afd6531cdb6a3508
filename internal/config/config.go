package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/alanmeadows/cleancheck/pkg/vcs"
	"github.com/tidwall/jsonc"
)

const (
	// FileName is the name of the user-level config file.
	FileName = "cleancheck.jsonc"
	// RepoFileName is the name of the repo-level config file at the git root.
	RepoFileName = ".cleancheck.jsonc"
)

// Sources lists the files Load reads. Empty fields are skipped.
type Sources struct {
	// UserDir contains FileName.
	UserDir string
	// RepoDir contains RepoFileName.
	RepoDir string
	// File is an explicit config file; unlike the others it must exist.
	File string
}

// DefaultSources returns the user config directory, the git root of the
// current directory, and the explicit file if any.
func DefaultSources(explicit string) Sources {
	src := Sources{File: explicit}
	if dir, err := os.UserConfigDir(); err == nil {
		src.UserDir = filepath.Join(dir, "cleancheck")
	}
	src.RepoDir = RepoRoot()
	return src
}

// Load reads and merges configuration from the default sources.
// Resolution order: defaults → user config → repo config → explicit file → environment.
func Load(explicit string) (*Config, error) {
	return LoadFrom(DefaultSources(explicit))
}

// layer is one config file in resolution order.
type layer struct {
	name     string
	path     string
	required bool
}

// layers lists the files in src from lowest to highest precedence.
func (src Sources) layers() []layer {
	var ls []layer
	if src.UserDir != "" {
		ls = append(ls, layer{name: "user config", path: filepath.Join(src.UserDir, FileName)})
	}
	if src.RepoDir != "" {
		ls = append(ls, layer{name: "repo config", path: filepath.Join(src.RepoDir, RepoFileName)})
	}
	if src.File != "" {
		ls = append(ls, layer{name: "config file", path: src.File, required: true})
	}
	return ls
}

// LoadFrom reads and merges configuration from src. Missing user and repo
// files are skipped; a file that exists but cannot be parsed is an error.
func LoadFrom(src Sources) (*Config, error) {
	cfg := DefaultConfig()

	for _, l := range src.layers() {
		m, err := loadJSONC(l.path)
		if errors.Is(err, fs.ErrNotExist) && !l.required {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
		if err := mergeIntoConfig(&cfg, m, l.path); err != nil {
			return nil, fmt.Errorf("merging %s: %w", l.name, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig overlays src, the parsed contents of the file at source,
// onto cfg. Keys cfg does not know are rejected so a misspelled permission
// cannot silently leave the strict default in place.
func mergeIntoConfig(cfg *Config, src map[string]any, source string) error {
	current, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(current, &dst); err != nil {
		return err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	return nil
}

// RepoRoot returns the git worktree root of the current directory, or an
// empty string when it is not inside a git repository.
func RepoRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	repo, err := vcs.NewGit().Discover(cwd)
	if err != nil {
		return ""
	}
	return repo.WorkdirRoot()
}

// RepoConfigPath returns the repo-level config path for the current directory.
func RepoConfigPath() (string, error) {
	root := RepoRoot()
	if root == "" {
		return "", fmt.Errorf("not in a git repository")
	}
	return filepath.Join(root, RepoFileName), nil
}
