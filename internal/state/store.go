// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/wingedpig/paddock/internal/proc"
)

// Store persists State to a single JSON file. Writes are serialized within
// the process; there is no cross-process lock, so only one paddock instance
// may write a given file at a time.
type Store struct {
	filePath       string
	defaultProfile string
	alive          func(pid int) bool

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLiveness overrides the PID liveness probe.
func WithLiveness(fn func(pid int) bool) Option {
	return func(s *Store) {
		s.alive = fn
	}
}

// NewStore creates a store at the given file path. defaultProfile seeds
// DefaultConfig for new or incomplete state files.
func NewStore(filePath, defaultProfile string, opts ...Option) *Store {
	s := &Store{
		filePath:       filePath,
		defaultProfile: defaultProfile,
		alive:          proc.Alive,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.filePath
}

// Load reads the state from disk. A missing, unreadable, or corrupt file
// yields the default state; errors are logged, never returned.
func (s *Store) Load() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() *State {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Failed to read state file, using defaults", "path", s.filePath, "err", err)
		}
		return s.defaults()
	}
	if len(data) == 0 {
		return s.defaults()
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		log.Warn("Corrupt state file, using defaults", "path", s.filePath, "err", err)
		return s.defaults()
	}
	s.normalize(&st)
	return &st
}

func (s *Store) defaults() *State {
	return &State{
		DefaultConfig:  s.defaultProfile,
		ActiveProjects: make(map[string]*ProjectRuntime),
	}
}

// normalize fills fields missing from older or hand-edited files.
func (s *Store) normalize(st *State) {
	if st.DefaultConfig == "" {
		st.DefaultConfig = s.defaultProfile
	}
	if st.ActiveProjects == nil {
		st.ActiveProjects = make(map[string]*ProjectRuntime)
	}
	for alias, rt := range st.ActiveProjects {
		if rt == nil {
			delete(st.ActiveProjects, alias)
			continue
		}
		if rt.DopplerConfig == "" {
			rt.DopplerConfig = st.DefaultConfig
		}
		if rt.Processes == nil {
			rt.Processes = make(map[string]*ProcessRecord)
		}
		for app, rec := range rt.Processes {
			if rec == nil {
				delete(rt.Processes, app)
				continue
			}
			if !rec.Status.Valid() {
				rec.Status = StatusStopped
			}
		}
	}
}

// Save writes the state to disk atomically (write tmp + rename).
func (s *Store) Save(st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(st)
}

func (s *Store) save(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename state file: %w", err)
	}
	return nil
}

// Update loads the current state, applies fn, and saves the result.
// Always re-reading first keeps concurrent writers (exit handlers of
// different apps) from clobbering each other.
func (s *Store) Update(fn func(st *State)) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	fn(st)
	if err := s.save(st); err != nil {
		return st, err
	}
	return st, nil
}

// ReconcileLiveness demotes every starting or running record whose PID is
// dead to stopped, and drops projects left with only stopped apps.
func (s *Store) ReconcileLiveness() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	changed := false
	for alias, rt := range st.ActiveProjects {
		for app, rec := range rt.Processes {
			// Only starting and running records claim a live PID. Errors
			// stay visible until the next stop or start.
			if !rec.Status.Active() {
				continue
			}
			if !s.alive(rec.PID) {
				log.Info("Process no longer alive, marking stopped", "project", alias, "app", app, "pid", rec.PID)
				rec.Status = StatusStopped
				changed = true
			}
		}
		if rt.AllStopped() {
			delete(st.ActiveProjects, alias)
			changed = true
		}
	}

	if !changed {
		return st, nil
	}
	if err := s.save(st); err != nil {
		return st, err
	}
	return st, nil
}
