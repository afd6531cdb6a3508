// Package watch re-runs a check whenever files under a directory tree change,
// until the check passes or the context is cancelled.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// metadataDirs are watched themselves but never descended into.
var metadataDirs = map[string]bool{
	".git": true,
	".hg":  true,
}

// Config describes one watch loop.
type Config struct {
	// Root is the directory tree to watch.
	Root string
	// Debounce is how long the tree must be quiet before the check reruns.
	Debounce time.Duration
	// Check is run once up front and again after each quiet period.
	Check func() error
	// OnResult, if set, receives the outcome of every Check.
	OnResult func(error)
	// Skip, if set, reports directories that should not be watched.
	Skip func(path string) bool
}

// Run watches cfg.Root and reruns cfg.Check until it returns nil. It returns
// nil once the check passes, or ctx.Err() if ctx is cancelled first.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Check == nil {
		return errors.New("watch: no check function")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	w := &treeWatcher{watcher: watcher, skip: cfg.Skip}
	// Register before the first check so no change slips in between.
	if err := w.addTree(cfg.Root); err != nil {
		return err
	}

	run := func() bool {
		err := cfg.Check()
		if cfg.OnResult != nil {
			cfg.OnResult(err)
		}
		return err == nil
	}

	if run() {
		return nil
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			slog.Debug("file changed", "path", event.Name, "op", event.Op.String())
			if event.Op&fsnotify.Create != 0 {
				if err := w.addCreated(event.Name); err != nil {
					slog.Warn("watching new directory", "path", event.Name, "error", err)
				}
			}
			timer.Reset(debounce)
			pending = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			slog.Warn("file watcher error", "error", err)

		case <-pending:
			pending = nil
			if run() {
				return nil
			}
		}
	}
}

type treeWatcher struct {
	watcher *fsnotify.Watcher
	skip    func(string) bool
}

// addCreated starts watching path and its subdirectories if it is a
// directory that skip does not reject.
func (w *treeWatcher) addCreated(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil
	}
	if w.skip != nil && w.skip(path) {
		slog.Debug("not watching skipped directory", "path", path)
		return nil
	}
	return w.addTree(path)
}

// addTree watches root and every directory below it, except the contents
// of metadata directories and anything skip rejects.
func (w *treeWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watching %s: %w", root, err)
			}
			// Entries can vanish mid-walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skip != nil && w.skip(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		if metadataDirs[d.Name()] {
			return filepath.SkipDir
		}
		return nil
	})
}
