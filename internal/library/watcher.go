package library

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounceWindow = 500 * time.Millisecond

// Watcher re-imports chunk files as they change on disk. Bursts of
// events for the same path are coalesced within the debounce window so
// an editor's write-rename dance triggers one import, not five.
type Watcher struct {
	dir     string
	window  time.Duration
	handler func(ctx context.Context, path string)
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	fsw     *fsnotify.Watcher
}

// NewWatcher watches dir for changed .jsonl files and invokes handler
// for each settled path.
func NewWatcher(dir string, handler func(ctx context.Context, path string), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		dir:     dir,
		window:  defaultDebounceWindow,
		handler: handler,
		logger:  logger,
		pending: make(map[string]*time.Timer),
		fsw:     fsw,
	}, nil
}

// Run processes events until the context is cancelled or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// relevant keeps writes and creates of .jsonl files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), ".jsonl")
}

// schedule arms (or re-arms) the debounce timer for a path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.window)
		return
	}

	w.pending[path] = time.AfterFunc(w.window, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.logger.Info("import file changed", slog.String("path", path))
		w.handler(ctx, path)
	})
}

// Close stops watching and cancels pending debounce timers.
func (w *Watcher) Close() error {
	err := w.fsw.Close()

	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return err
}
