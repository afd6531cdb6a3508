package config

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"
)

// DefaultLockTimeout is the default timeout for acquiring a config file lock.
const DefaultLockTimeout = 5 * time.Second

// lockPath places the lock for path outside the directory being written,
// so locking a repo config never leaves an untracked file in the repository.
func lockPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	h := fnv.New64a()
	h.Write([]byte(abs))

	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "cleancheck", "locks", fmt.Sprintf("%x.lock", h.Sum64()))
}

// WithLock acquires an exclusive lock for path, runs fn, then releases.
func WithLock(path string, timeout time.Duration, fn func() error) error {
	lockFile := lockPath(path)
	if err := os.MkdirAll(filepath.Dir(lockFile), 0755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}
	fileLock := flock.New(lockFile)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring lock on %s: %w", lockFile, err)
	}
	if !locked {
		return fmt.Errorf("timed out acquiring lock on %s", lockFile)
	}
	defer fileLock.Unlock()

	return fn()
}

// SetValue sets a dotted key in the JSONC file at path, creating the file if
// needed. Comments are not preserved.
func SetValue(path, key string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return WithLock(path, DefaultLockTimeout, func() error {
		existing := []byte("{}")
		if data, err := os.ReadFile(path); err == nil {
			// sjson requires valid JSON
			existing = jsonc.ToJSON(data)
		}

		updated, err := sjson.SetBytes(existing, key, value)
		if err != nil {
			return fmt.Errorf("setting key %q: %w", key, err)
		}

		// Validate the result still loads as a Config before writing.
		var m map[string]any
		if err := json.Unmarshal(updated, &m); err != nil {
			return fmt.Errorf("config would become invalid JSON: %w", err)
		}
		cfg := DefaultConfig()
		if err := mergeIntoConfig(&cfg, m, path); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		return atomicWriteFile(path, updated, 0644)
	})
}

// WriteFile writes cfg as indented JSON to path.
func WriteFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return WithLock(path, DefaultLockTimeout, func() error {
		return atomicWriteFile(path, append(data, '\n'), 0644)
	})
}

// atomicWriteFile writes data to a temp file beside path then renames it
// into place. The temp file is removed if any step fails.
func atomicWriteFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("setting mode on %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
