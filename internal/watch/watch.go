// =============================================================================
// Order Consolidation - Source Watcher
// =============================================================================
//
// This module watches the source files and calls back once they settle, so
// the store is refreshed without a manual run.
//
// HOW IT WORKS:
//   1. The parent directory of every watched file is added to fsnotify, so
//      files replaced by rename or created later are still seen
//   2. Events for other files and for our own temp files are ignored
//   3. Each event stamps its path; a ticker hands paths whose last event is
//      older than the debounce window to the callback in one batch
//
// =============================================================================

package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ginjaninja78/order-consolidation/pkg/utils"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet time required before a change is reported.
// Spreadsheet tools save in several writes.
const DefaultDebounce = 2 * time.Second

// Logger is the logging surface the watcher needs.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// ChangeFunc receives the settled paths, sorted.
type ChangeFunc func(ctx context.Context, changed []string)

// Stats counts watcher activity.
type Stats struct {
	Events    int
	Ignored   int
	Batches   int
	Errors    int
	LastEvent time.Time
}

// Watcher debounces filesystem events for a fixed set of files.
type Watcher struct {
	mu          sync.Mutex
	files       map[string]struct{}
	dirs        []string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	onChange    ChangeFunc
	logger      Logger
	stats       Stats
}

// New creates a watcher for paths. A debounce of zero uses DefaultDebounce.
func New(paths []string, debounce time.Duration, onChange ChangeFunc, logger Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	w := &Watcher{
		files:       make(map[string]struct{}),
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		onChange:    onChange,
		logger:      logger,
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		w.dirs = append(w.dirs, d)
	}
	sort.Strings(w.dirs)

	return w, nil
}

// Run watches until ctx is cancelled. It returns an error only when the
// watch cannot be set up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	for _, d := range w.dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
		w.logger.Debugf("watching directory %s", d)
	}
	w.logger.Infof("watching %d files in %d directories", len(w.files), len(w.dirs))

	tick := w.debounceDur / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebouncedEvents(ctx)
		}
	}
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	name := filepath.Clean(event.Name)
	if _, ok := w.files[name]; !ok || utils.IsTempPath(name) {
		w.stats.Ignored++
		return
	}

	w.logger.Debugf("%s %s", event.Op, name)
	w.stats.Events++
	w.stats.LastEvent = time.Now()
	w.debounceMap[name] = w.stats.LastEvent
}

// processDebouncedEvents hands settled paths to the callback.
func (w *Watcher) processDebouncedEvents(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	if len(settled) > 0 {
		w.stats.Batches++
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	sort.Strings(settled)
	w.onChange(ctx, settled)
}
