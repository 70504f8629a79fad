// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"sync"
	"time"
)

const defaultDebounce = 200 * time.Millisecond

// Debouncer runs a function once a burst of triggers has been quiet for the
// configured duration.
type Debouncer struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
	stopped  bool
}

// NewDebouncer creates a debouncer. Non-positive durations use the default.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration <= 0 {
		duration = defaultDebounce
	}
	return &Debouncer{duration: duration}
}

// Trigger (re)schedules fn. Only the fn from the last trigger in a burst runs.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Stop cancels any pending call and ignores future triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
