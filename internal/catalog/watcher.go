package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// Reloader is the part of Store the watcher drives.
type Reloader interface {
	Path() string
	Reload() (*Result, error)
}

// Watcher reloads a catalog whenever its file is written or recreated.
type Watcher struct {
	store    Reloader
	debounce time.Duration
	log      *slog.Logger
}

// NewWatcher creates a watcher for store. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(store Reloader, debounce time.Duration, log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{store: store, debounce: debounce, log: log}
}

// Run watches until ctx is canceled. The parent directory is watched rather
// than the file so that editors which save by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating catalog watcher: %w", err)
	}
	defer fw.Close()

	target, err := filepath.Abs(w.store.Path())
	if err != nil {
		return fmt.Errorf("resolving catalog path: %w", err)
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	w.log.Info("watching exercise catalog", "path", target)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("catalog watcher error", "error", err)

		case <-timer.C:
			if _, err := w.store.Reload(); err != nil {
				w.log.Error("catalog reload failed", "path", target, "error", err)
			}
		}
	}
}
