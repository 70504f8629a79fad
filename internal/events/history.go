// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"sync"
	"time"
)

const (
	defaultHistoryEvents = 1000
	defaultHistoryAge    = time.Hour
)

// History retains recent events, bounded by count and age.
type History struct {
	mu        sync.RWMutex
	events    []Event
	maxEvents int
	maxAge    time.Duration
}

// NewHistory creates a history. Zero limits fall back to defaults.
func NewHistory(maxEvents int, maxAge time.Duration) *History {
	if maxEvents <= 0 {
		maxEvents = defaultHistoryEvents
	}
	if maxAge <= 0 {
		maxAge = defaultHistoryAge
	}
	return &History{maxEvents: maxEvents, maxAge: maxAge}
}

// Add stores an event and drops whatever is now too old or over the limit.
// Events are expected in publish order.
func (h *History) Add(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, event)

	cutoff := time.Now().Add(-h.maxAge)
	drop := 0
	for drop < len(h.events) && h.events[drop].Timestamp.Before(cutoff) {
		drop++
	}
	if over := len(h.events) - drop - h.maxEvents; over > 0 {
		drop += over
	}
	if drop > 0 {
		h.events = append([]Event(nil), h.events[drop:]...)
	}
}

// Query returns events matching filter, oldest first.
func (h *History) Query(filter Filter) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Event, 0)
	for _, event := range h.events {
		if matchesFilter(event, filter) {
			result = append(result, event)
		}
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

// Len returns the number of retained events.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}

func matchesFilter(event Event, filter Filter) bool {
	if len(filter.Types) > 0 {
		matched := false
		for _, pattern := range filter.Types {
			if Match(event.Type, pattern) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if filter.Project != "" && event.Project != filter.Project {
		return false
	}
	if !filter.Since.IsZero() && event.Timestamp.Before(filter.Since) {
		return false
	}
	return true
}
