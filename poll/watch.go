// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package poll

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before a wake-up.
const DefaultDebounce = 250 * time.Millisecond

// Watch returns a channel that receives after filesystem activity under dirs
// settles for debounce. Directories are watched recursively and new
// subdirectories are picked up as they appear. Hidden entries, including
// in-flight temporary files, are ignored. Missing directories are skipped;
// if none can be watched ErrNoWatchableDirs is returned. The channel is closed
// once ctx is done.
func Watch(ctx context.Context, logger *slog.Logger, debounce time.Duration, dirs ...string) (<-chan struct{}, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "watch")
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	watched := 0
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := addRecursive(watcher, dir); err != nil {
			logger.Warn("cannot watch directory", "path", dir, "err", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return nil, ErrNoWatchableDirs
	}

	wake := make(chan struct{}, 1)
	go func() {
		defer close(wake)
		defer watcher.Close()
		eventLoop(ctx, logger, watcher, debounce, wake)
	}()
	return wake, nil
}

func eventLoop(ctx context.Context, logger *slog.Logger, watcher *fsnotify.Watcher, debounce time.Duration, wake chan<- struct{}) {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if isHidden(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						logger.Warn("cannot watch new directory", "path", event.Name, "err", err)
					}
				}
			}
			logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case <-timer.C:
			select {
			case wake <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("fsnotify error", "err", err)
		}
	}
}

// addRecursive watches dir and every non-hidden directory below it.
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
