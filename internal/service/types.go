// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package service supervises app processes for every configured project.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/wingedpig/paddock/internal/git"
	"github.com/wingedpig/paddock/internal/state"
	"github.com/wingedpig/paddock/internal/stats"
)

var (
	// ErrUnknownProject is returned for aliases not in the configuration.
	ErrUnknownProject = errors.New("unknown project")
	// ErrUnknownApp is returned for app names not in the configuration.
	ErrUnknownApp = errors.New("unknown app")
	// ErrUnknownProfile is returned for runtime profiles not in the configuration.
	ErrUnknownProfile = errors.New("unknown profile")
	// ErrProfileMismatch is returned when a single app is started with a
	// profile other than the one its project's live apps run with.
	ErrProfileMismatch = errors.New("profile differs from running project")
)

// PortEnsurer frees ports before an app is launched.
type PortEnsurer interface {
	EnsureAvailable(ctx context.Context, ports []int) error
}

// TreeKiller terminates a process and its descendants.
type TreeKiller interface {
	KillTree(ctx context.Context, pid int) error
}

// StatsSource provides the latest resource sample for an app.
type StatsSource interface {
	Latest(project, app string) (stats.Stats, bool)
}

// GitSource provides the cached git status of a checkout.
type GitSource interface {
	Cached(path string) (git.Status, bool)
}

// ProjectStatus is the presentation snapshot of one project.
type ProjectStatus struct {
	Alias     string      `json:"alias"`
	Path      string      `json:"path"`
	Index     int         `json:"index"`
	Active    bool        `json:"active"`
	Profile   string      `json:"profile,omitempty"`
	StartedAt *time.Time  `json:"started_at,omitempty"`
	Git       *git.Status `json:"git,omitempty"`
	Apps      []AppStatus `json:"apps"`
}

// AppStatus is the presentation snapshot of one app within a project.
type AppStatus struct {
	Name      string       `json:"name"`
	Port      int          `json:"port"`
	Status    state.Status `json:"status"`
	PID       int          `json:"pid,omitempty"`
	Adopted   bool         `json:"adopted,omitempty"`
	Streaming bool         `json:"streaming,omitempty"`
	Stats     *stats.Stats `json:"stats,omitempty"`
}

// Running reports whether any app of the project is starting or running.
func (p ProjectStatus) Running() bool {
	for _, a := range p.Apps {
		if a.Status.Active() {
			return true
		}
	}
	return false
}
