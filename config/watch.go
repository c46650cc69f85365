package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/randalmurphal/quorum/consensus"
)

// Watch monitors the configuration file at path and invokes onChange with
// the freshly loaded configuration after every write. Reloads that fail to
// parse or validate are logged and skipped, keeping the previous
// configuration in effect.
//
// The parent directory is watched rather than the file itself, since many
// editors replace files on save. Watching stops when ctx is done.
func Watch(ctx context.Context, path string, onChange func(*consensus.Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				cfg, err := Load(path)
				if err != nil {
					slog.Warn("config reload failed, keeping previous",
						"path", path,
						"error", err)
					continue
				}
				onChange(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}
