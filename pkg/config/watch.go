package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/openmission/openmission/pkg/telemetry"
)

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 500 * time.Millisecond

// Watch reloads the mission file whenever it changes on disk and hands the
// result to onChange, parse errors included so callers can surface them.
// It blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *telemetry.Logger, onChange func(*File, error)) error {
	if logger == nil {
		logger = telemetry.NopLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watching the file directly misses atomic-rename saves, so watch the
	// containing directory and filter events by name.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logger.WithField("path", path).Info("watching mission file")

	var reloadTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			logger.WithField("op", event.Op.String()).Debug("mission file changed")

			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(watchDebounce, func() {
				onChange(Load(path))
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Error("watcher error")
		}
	}
}
