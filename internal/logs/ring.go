// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logs captures app output into bounded in-memory buffers mirrored
// to per-app log files.
package logs

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of lines kept per (project, app).
const DefaultCapacity = 10000

// Line is one captured output line.
type Line struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Ring is a thread-safe FIFO ring buffer of lines.
type Ring struct {
	mu       sync.RWMutex
	lines    []Line
	head     int // next write position
	size     int
	capacity int
}

// NewRing creates a ring buffer holding up to capacity lines.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		lines:    make([]Line, capacity),
		capacity: capacity,
	}
}

// Add appends line, evicting the oldest line when full. Returns true if a
// line was evicted.
func (r *Ring) Add(line Line) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[r.head] = line
	r.head = (r.head + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
		return false
	}
	return true
}

// Tail returns the last n lines, oldest first. n <= 0 returns everything.
func (r *Ring) Tail(n int) []Line {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > r.size {
		n = r.size
	}
	result := make([]Line, n)
	start := (r.head - n + r.capacity) % r.capacity
	for i := 0; i < n; i++ {
		result[i] = r.lines[(start+i)%r.capacity]
	}
	return result
}

// Lines returns every buffered line, oldest first.
func (r *Ring) Lines() []Line {
	return r.Tail(0)
}

// Replace discards the buffer contents and loads lines, keeping only the
// newest capacity of them.
func (r *Ring) Replace(lines []Line) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(lines) > r.capacity {
		lines = lines[len(lines)-r.capacity:]
	}
	r.lines = make([]Line, r.capacity)
	copy(r.lines, lines)
	r.size = len(lines)
	r.head = r.size % r.capacity
}

// Clear removes all lines.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = make([]Line, r.capacity)
	r.size = 0
	r.head = 0
}

// Len returns the number of buffered lines.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Capacity returns the maximum number of lines.
func (r *Ring) Capacity() int {
	return r.capacity
}
