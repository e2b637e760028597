package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"

	"github.com/slighter12/tres-devtools-go/logger"
)

// ReloadFunc receives the reloaded config, or the error that prevented loading it.
type ReloadFunc func(*Config, error)

// Watch reloads path whenever it is written or created and
// hands the result to fn. It blocks until ctx is done.
//
// The parent directory is watched rather than the file so editors that save
// by replacing the file keep triggering reloads.
func Watch(ctx context.Context, path string, fn ReloadFunc) error {
	if fn == nil {
		return fmt.Errorf("config watch: nil reload func")
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand config path: %w", err)
	}
	target, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}
	logger.Debug("Watching config file", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadConfig(target)
			if err != nil {
				logger.Warn("Config reload failed", "path", target, "error", err)
			} else {
				logger.Info("Config reloaded", "path", target)
			}
			fn(cfg, err)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error", "error", err)
		}
	}
}
