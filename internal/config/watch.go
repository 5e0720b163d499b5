package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch re-parses the agent config file every time it is written and hands
// the result to onChange. It blocks until ctx is cancelled.
//
// A file that fails to reload (bad YAML, failed validation) is logged and
// ignored; onChange only ever sees configs that passed validate.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic-save editors replace the file (rename + create) rather
			// than writing in place, so Create counts as a change too.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			updated, err := Load(path)
			if err != nil {
				slog.Error("config: reload rejected, previous config stays active",
					"path", path, "err", err)
				continue
			}

			slog.Info("config: file changed", "path", path)
			onChange(updated)

			// An atomic save leaves the watch pointing at a dead inode;
			// re-adding the path repairs it.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watch error", "err", err)
		}
	}
}
