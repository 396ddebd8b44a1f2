// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/tpbridge/lib/clock"
)

// WatchDebounce is how long Watch waits after the last change event
// before reloading. Editors often write a file in several steps.
const WatchDebounce = 250 * time.Millisecond

// Watch reloads the configuration whenever the file changes and calls
// onChange (if non-nil) with each successful result. It watches the
// containing directory so that atomic replace-by-rename is seen. Events
// that leave the file's content unchanged (touch, chmod, a save without
// edits) do not reload. Watch blocks until ctx is done. The directory
// must exist.
func (p *Provider) Watch(ctx context.Context, onChange func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: creating watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(p.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watching %s: %w", filepath.Dir(target), err)
	}
	p.logger.Debug("watching configuration file", "path", target)

	var (
		mu      sync.Mutex
		pending *clock.Timer
	)
	reload := func() {
		settings, changed, err := p.reloadIfChanged()
		if !changed {
			p.logger.Debug("configuration file touched but unchanged", "path", target)
			return
		}
		if err != nil {
			p.logger.Warn("configuration reload failed, keeping previous settings",
				"path", target,
				"error", err,
			)
			return
		}
		p.logger.Info("configuration reloaded", "path", target)
		if onChange != nil {
			onChange(settings)
		}
	}
	defer func() {
		mu.Lock()
		if pending != nil {
			pending.Stop()
		}
		mu.Unlock()
	}()

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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			pending = p.clock.AfterFunc(WatchDebounce, reload)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("configuration watcher error", "error", err)
		}
	}
}

// reloadIfChanged reloads unless the file still has the content of the
// last successful load.
func (p *Provider) reloadIfChanged() (Settings, bool, error) {
	p.mu.RLock()
	loaded := p.digest
	p.mu.RUnlock()
	if contentDigest(p.path) == loaded {
		return p.Settings(), false, nil
	}
	settings, err := p.Reload()
	return settings, true, err
}

// contentDigest hashes the file at path. A missing file hashes as empty,
// which resolves to the same settings.
func contentDigest(path string) [32]byte {
	data, _ := os.ReadFile(path)
	return blake3.Sum256(data)
}
