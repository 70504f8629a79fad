// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package state persists which projects are active and the processes they run.
package state

import "time"

// Status is the lifecycle state of one app process.
type Status string

const (
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopped  Status = "stopped"
	StatusError    Status = "error"
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusStarting, StatusRunning, StatusStopped, StatusError:
		return true
	}
	return false
}

// Active reports whether s claims a live process.
func (s Status) Active() bool {
	return s == StatusStarting || s == StatusRunning
}

// ProcessRecord is the persisted view of one app process.
type ProcessRecord struct {
	PID    int    `json:"pid"`
	Port   int    `json:"port"`
	Status Status `json:"status"`
}

// ProjectRuntime exists while a project has at least one non-stopped app.
// An app that failed keeps its runtime until the next explicit stop or start.
type ProjectRuntime struct {
	DopplerConfig string                    `json:"dopplerConfig"`
	StartedAt     *time.Time                `json:"startedAt"`
	Processes     map[string]*ProcessRecord `json:"processes"`
}

// AllStopped reports whether every process of the runtime is stopped.
// Error records don't count as stopped.
func (r *ProjectRuntime) AllStopped() bool {
	for _, rec := range r.Processes {
		if rec.Status != StatusStopped {
			return false
		}
	}
	return true
}

// State is the document written to disk.
type State struct {
	DefaultConfig  string                     `json:"defaultConfig"`
	ActiveProjects map[string]*ProjectRuntime `json:"activeProjects"`
}

// Runtime returns the runtime for alias, creating it with the given profile
// if it doesn't exist.
func (s *State) Runtime(alias, profile string) *ProjectRuntime {
	rt, ok := s.ActiveProjects[alias]
	if !ok {
		now := time.Now().UTC()
		rt = &ProjectRuntime{
			DopplerConfig: profile,
			StartedAt:     &now,
			Processes:     make(map[string]*ProcessRecord),
		}
		s.ActiveProjects[alias] = rt
	}
	return rt
}

// Record returns the process record for app in project alias, or nil.
func (s *State) Record(alias, app string) *ProcessRecord {
	rt, ok := s.ActiveProjects[alias]
	if !ok {
		return nil
	}
	return rt.Processes[app]
}

// DropIfStopped removes the runtime for alias if all its apps are stopped.
func (s *State) DropIfStopped(alias string) {
	if rt, ok := s.ActiveProjects[alias]; ok && rt.AllStopped() {
		delete(s.ActiveProjects, alias)
	}
}
