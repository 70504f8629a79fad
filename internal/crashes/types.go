// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package crashes

import (
	"time"

	"github.com/wingedpig/paddock/internal/logs"
)

// Crash is a report captured when an app exits unexpectedly.
type Crash struct {
	Version   string      `json:"version"` // Report format version
	ID        string      `json:"id"`      // Timestamp-based, sortable
	Project   string      `json:"project"`
	App       string      `json:"app"`
	Timestamp time.Time   `json:"timestamp"`
	PID       int         `json:"pid,omitempty"` // Zero when the spawn failed
	ExitCode  int         `json:"exit_code"`
	Error     string      `json:"error,omitempty"`   // Spawn error, if any
	Lines     []logs.Line `json:"lines"`             // Tail of the app's output
	Dropped   int         `json:"dropped,omitempty"` // Buffered lines not included
}

// Summary is a minimal representation for listing crashes.
type Summary struct {
	ID        string    `json:"id"`
	Project   string    `json:"project"`
	App       string    `json:"app"`
	Timestamp time.Time `json:"timestamp"`
	ExitCode  int       `json:"exit_code"`
	Error     string    `json:"error,omitempty"`
}
