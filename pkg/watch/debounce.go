package watch

import (
	"sort"
	"sync"
	"time"
)

// debouncer collects paths and flushes them once no new path arrived for
// the window, or as soon as maxBatch distinct paths are pending.
type debouncer struct {
	window   time.Duration
	maxBatch int
	onFlush  func([]string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool
}

func newDebouncer(window time.Duration, maxBatch int, onFlush func([]string)) *debouncer {
	return &debouncer{
		window:   window,
		maxBatch: maxBatch,
		onFlush:  onFlush,
		pending:  make(map[string]struct{}),
	}
}

func (d *debouncer) add(path string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending[path] = struct{}{}

	if d.maxBatch > 0 && len(d.pending) >= d.maxBatch {
		d.flushLocked()
		return
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		d.flushLocked()
	})
	d.mu.Unlock()
}

// flushLocked must be called with mu held and releases it before running
// the callback.
func (d *debouncer) flushLocked() {
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	d.pending = make(map[string]struct{})
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if len(paths) > 0 {
		d.onFlush(paths)
	}
}

// stop discards pending paths and prevents further flushes.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
