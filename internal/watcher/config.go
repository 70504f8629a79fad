// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher reloads the configuration file when it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/wingedpig/paddock/internal/config"
)

// LoadFunc loads and validates the config at path.
type LoadFunc func(ctx context.Context, path string) (*config.Config, error)

// ApplyFunc receives each successfully reloaded config.
type ApplyFunc func(cfg *config.Config)

// ConfigWatcher watches one config file. It watches the parent directory so
// editors that save by rename are still noticed.
type ConfigWatcher struct {
	path      string
	load      LoadFunc
	apply     ApplyFunc
	watcher   *fsnotify.Watcher
	debouncer *Debouncer

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewConfigWatcher starts watching path. Invalid configs are logged and
// ignored; the last good config stays in effect.
func NewConfigWatcher(path string, debounce time.Duration, load LoadFunc, apply ApplyFunc) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	w := &ConfigWatcher{
		path:      abs,
		load:      load,
		apply:     apply,
		watcher:   fsWatcher,
		debouncer: NewDebouncer(debounce),
		closeCh:   make(chan struct{}),
	}

	w.wg.Add(1)
	go w.processEvents()
	return w, nil
}

// Path returns the watched file.
func (w *ConfigWatcher) Path() string {
	return w.path
}

// Close stops watching.
func (w *ConfigWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		w.debouncer.Stop()
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *ConfigWatcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.debouncer.Trigger(w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("Config watcher error", "err", err)
		}
	}
}

func (w *ConfigWatcher) reload() {
	select {
	case <-w.closeCh:
		return
	default:
	}

	cfg, err := w.load(context.Background(), w.path)
	if err != nil {
		log.Warn("Ignoring invalid config change", "path", w.path, "err", err)
		return
	}
	log.Info("Config reloaded", "path", w.path)
	w.apply(cfg)
}
