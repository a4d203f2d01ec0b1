// Package watch recompiles an expression file whenever it changes on disk.
// The parent directory is watched rather than the file itself, since editors
// commonly save by writing a temp file and renaming it over the original,
// which would silently drop a watch on the file's inode.
package watch

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/soracane/bytebeat/internal/beat"
)

// DefaultDebounce is how long the watcher waits after the last file event
// before recompiling. Editors often fire several events per save.
const DefaultDebounce = 100 * time.Millisecond

// Update reports one recompilation of the watched file. Program is nil when
// compilation failed, in which case Diagnostics explains why.
type Update struct {
	Source      string
	Program     *beat.Program
	Diagnostics beat.Diagnostics
}

type Watcher struct {
	path     string
	notify   *fsnotify.Watcher
	logger   *slog.Logger
	debounce *debouncer
}

// New creates a watcher for the expression file at path. A nil logger falls
// back to slog.Default.
func New(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}

	return &Watcher{
		path:     path,
		notify:   notify,
		logger:   logger,
		debounce: newDebouncer(DefaultDebounce),
	}, nil
}

// Watch delivers an initial Update for the file's current contents, then one
// Update per observed change, until ctx is cancelled. Updates are delivered
// from a single goroutine, never concurrently.
func (w *Watcher) Watch(ctx context.Context, deliver func(Update)) error {
	defer w.debounce.stop()
	defer w.notify.Close()

	dir := filepath.Dir(w.path)
	if err := w.notify.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	w.logger.Info("watching expression file",
		"path", w.path,
		"debounce_ms", DefaultDebounce.Milliseconds(),
	)

	// The debounce timer fires on its own goroutine; it only pokes this
	// channel so that reloading and delivery stay on the loop goroutine.
	reloads := make(chan struct{}, 1)
	w.reload(deliver)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case <-reloads:
			w.reload(deliver)

		case event, ok := <-w.notify.Events:
			if !ok {
				return fmt.Errorf("watch events channel closed")
			}
			if !w.concernsTarget(event) {
				continue
			}

			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			w.debounce.trigger(func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.notify.Errors:
			if !ok {
				return fmt.Errorf("watch errors channel closed")
			}
			// Keep watching; transient errors must not kill playback.
			w.logger.Error("watch error", "error", err)
		}
	}
}

// concernsTarget filters directory events down to the watched file.
func (w *Watcher) concernsTarget(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	target, err := filepath.Abs(w.path)
	if err != nil {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == target
}

func (w *Watcher) reload(deliver func(Update)) {
	source, err := ReadExpression(w.path)
	if err != nil {
		w.logger.Error("read failed", "path", w.path, "error", err)
		return
	}

	update := Update{Source: source}
	program, err := beat.Compile(source)
	if err != nil {
		// A broken save keeps the previous program playing.
		update.Diagnostics, _ = err.(beat.Diagnostics)
		w.logger.Warn("compile failed", "path", w.path, "errors", len(update.Diagnostics))
	} else {
		update.Program = program
	}

	deliver(update)
}

// ReadExpression reads the first line of the file at path. Everything after
// the first newline is ignored, matching the single-line expression grammar.
func ReadExpression(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("scanner.Err: %w", err)
		}
		return "", nil
	}
	return scanner.Text(), nil
}

// debouncer coalesces rapid event bursts into a single callback after a
// quiet period.
type debouncer struct {
	interval time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, callback)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
