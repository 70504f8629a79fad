// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// Project is one checkout of the managed codebase and the state of its apps.
type Project struct {
	Alias     string     `json:"alias"`
	Path      string     `json:"path"`
	Index     int        `json:"index"`
	Active    bool       `json:"active"`
	Profile   string     `json:"profile,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Git       *GitStatus `json:"git,omitempty"`
	Apps      []App      `json:"apps"`
}

// Running reports whether any app of the project is starting or running.
func (p Project) Running() bool {
	for _, a := range p.Apps {
		if a.Status == AppStatusStarting || a.Status == AppStatusRunning {
			return true
		}
	}
	return false
}

// App is the state of one app within a project.
type App struct {
	Name      string    `json:"name"`
	Port      int       `json:"port"`
	Status    string    `json:"status"`
	PID       int       `json:"pid,omitempty"`
	Adopted   bool      `json:"adopted,omitempty"`
	Streaming bool      `json:"streaming,omitempty"`
	Stats     *AppStats `json:"stats,omitempty"`
}

// App status values.
const (
	AppStatusStarting = "starting"
	AppStatusRunning  = "running"
	AppStatusStopped  = "stopped"
	AppStatusError    = "error"
)

// AppStats is the latest resource sample of an app's process tree.
type AppStats struct {
	CPUPercent float64   `json:"cpu_percent"`
	MemoryRSS  uint64    `json:"memory_rss"`
	Processes  int       `json:"processes"`
	Listening  bool      `json:"listening"`
	SampledAt  time.Time `json:"sampled_at"`
}

// GitStatus is the cached git state of a project checkout.
type GitStatus struct {
	Branch   string `json:"branch"`
	Detached bool   `json:"detached,omitempty"`
	Dirty    bool   `json:"dirty"`
	Changes  int    `json:"changes"`
}

// LogLine is one captured output line.
type LogLine struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Logs is a slice of an app's log buffer.
type Logs struct {
	Project string    `json:"project"`
	App     string    `json:"app"`
	Query   string    `json:"query,omitempty"`
	Total   int       `json:"total"`
	Lines   []LogLine `json:"lines"`
}

// LogEvent is a line delivered by [LogClient.Stream].
type LogEvent struct {
	Project  string  `json:"project"`
	App      string  `json:"app"`
	Line     LogLine `json:"line"`
	DidEvict bool    `json:"did_evict"`
}

// Event is a lifecycle event such as "app.crashed".
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Project   string                 `json:"project,omitempty"`
	App       string                 `json:"app,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Profiles lists the runtime profiles and the persisted default.
type Profiles struct {
	Profiles []string `json:"profiles"`
	Default  string   `json:"default"`
}

// CrashSummary is the listing form of a crash report.
type CrashSummary struct {
	ID        string    `json:"id"`
	Project   string    `json:"project"`
	App       string    `json:"app"`
	Timestamp time.Time `json:"timestamp"`
	ExitCode  int       `json:"exit_code"`
	Error     string    `json:"error,omitempty"`
}

// Crash is a report recorded when an app exited unexpectedly, with the
// tail of its output.
type Crash struct {
	Version   string    `json:"version"`
	ID        string    `json:"id"`
	Project   string    `json:"project"`
	App       string    `json:"app"`
	Timestamp time.Time `json:"timestamp"`
	PID       int       `json:"pid,omitempty"`
	ExitCode  int       `json:"exit_code"`
	Error     string    `json:"error,omitempty"`
	Lines     []LogLine `json:"lines"`
	Dropped   int       `json:"dropped,omitempty"`
}
