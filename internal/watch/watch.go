// Package watch reports changes to the catalog data file.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/litescript/deepskies/internal/logging"
)

// DefaultDebounce collapses the burst of events an editor or copy produces
// into one callback.
const DefaultDebounce = 150 * time.Millisecond

// Callback is called once per settled change with the file's path.
type Callback func(path string)

// Watch watches path until ctx is cancelled and calls cb after the file is
// written, created, renamed or removed, once per burst of events. The parent
// directory is watched so replacing the file by rename is seen too.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *logging.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger.Info("watching %s", target)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Debug("watcher stopped")
			return nil

		case <-fire:
			fire = nil
			cb(target)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
				!ev.Op.Has(fsnotify.Rename) && !ev.Op.Has(fsnotify.Remove) {
				continue
			}
			logger.Debug("catalog event: %s", ev.Op)

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Stop()
				timer.Reset(debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error: %v", watchErr)
		}
	}
}
