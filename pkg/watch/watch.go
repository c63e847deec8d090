// Package watch reports changes to diagram sources.
//
// A [Watcher] follows a set of file paths or doublestar patterns
// ("docs/**/*.tree") and calls back with the changed files, batched so that
// an editor's write-rename-chmod sequence triggers one re-render.
//
// Directories are watched instead of files, so that files replaced by
// atomic saves and files created later that match a pattern are seen.
//
//	w, err := watch.New([]string{"grammar/**/*.tree"}, watch.Options{})
//	defer w.Close()
//	err = w.Run(ctx, func(paths []string) { rerender(paths) })
package watch

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/tidytree/pkg/errors"
)

const (
	// DefaultDebounce is the quiet period before changes are reported.
	DefaultDebounce = 200 * time.Millisecond

	// DefaultMaxBatch flushes early once this many files changed.
	DefaultMaxBatch = 100
)

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	MaxBatch int
	Logger   *log.Logger
}

// Watcher watches the files matching a set of patterns.
type Watcher struct {
	patterns []string
	opts     Options
	fs       *fsnotify.Watcher

	mu     sync.Mutex
	dirs   map[string]bool
	closed bool
}

// New starts watching the directories that can contain files matching
// patterns. A pattern without glob metacharacters is a plain path.
func New(patterns []string, opts Options) (*Watcher, error) {
	if len(patterns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = DefaultMaxBatch
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create file watcher")
	}
	w := &Watcher{opts: opts, fs: fw, dirs: make(map[string]bool)}

	for _, p := range patterns {
		p = filepath.Clean(p)
		if !doublestar.ValidatePathPattern(p) {
			fw.Close()
			return nil, errors.New(errors.ErrCodeInvalidPath, "invalid pattern %q", p)
		}
		w.patterns = append(w.patterns, p)
		if err := w.addPattern(p); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addPattern(pattern string) error {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	base = filepath.FromSlash(base)
	if rest == "" || !hasMeta(rest) {
		// A plain path: watch the directory it lives in.
		return w.addDir(filepath.Dir(pattern))
	}
	if !strings.Contains(rest, "**") && !strings.Contains(rest, "/") {
		return w.addDir(base)
	}
	return w.addTree(base)
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "watch %s", root)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.addDir(path)
	})
}

func (w *Watcher) addDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] {
		return nil
	}
	if _, err := os.Stat(dir); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "watch %s", dir)
	}
	if err := w.fs.Add(dir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", dir)
	}
	w.dirs[dir] = true
	w.opts.Logger.Debug("watching directory", "path", dir)
	return nil
}

// Match reports whether path is one of the watched files.
func (w *Watcher) Match(path string) bool {
	path = filepath.Clean(path)
	for _, p := range w.patterns {
		if p == path {
			return true
		}
		if ok, _ := doublestar.PathMatch(p, path); ok {
			return true
		}
	}
	return false
}

// Run delivers batches of changed files to onChange until ctx is done or
// the watcher is closed. onChange runs on a separate goroutine, one batch
// at a time.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	batches := make(chan []string, 1)
	done := make(chan struct{})
	deb := newDebouncer(w.opts.Debounce, w.opts.MaxBatch, func(paths []string) {
		select {
		case batches <- paths:
		case <-done:
		}
	})
	defer close(done)
	defer deb.stop()

	go func() {
		for {
			select {
			case paths := <-batches:
				onChange(paths)
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev, deb)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event, deb *debouncer) {
	w.opts.Logger.Debug("file event", "path", ev.Name, "op", ev.Op.String())

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && w.coversTree(ev.Name) {
			if err := w.addTree(ev.Name); err != nil {
				w.opts.Logger.Debug("failed to watch new directory", "path", ev.Name, "error", err)
			}
			return
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return
	}
	if !w.Match(ev.Name) {
		return
	}
	// A rename away from the watched name is followed by a create.
	if _, err := os.Stat(ev.Name); err != nil {
		return
	}
	deb.add(filepath.Clean(ev.Name))
}

// coversTree reports whether a new directory dir lies under the base of a
// recursive pattern.
func (w *Watcher) coversTree(dir string) bool {
	for _, p := range w.patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(p))
		if !strings.Contains(rest, "**") && !strings.Contains(rest, "/") {
			continue
		}
		rel, err := filepath.Rel(filepath.FromSlash(base), dir)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fs.Close()
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{\\")
}
