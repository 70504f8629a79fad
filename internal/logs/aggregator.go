// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Key identifies one app's log stream within a project.
type Key struct {
	Project string
	App     string
}

// Event is published to subscribers for every added line.
type Event struct {
	Project  string `json:"project"`
	App      string `json:"app"`
	Line     Line   `json:"line"`
	DidEvict bool   `json:"did_evict"`
}

// Aggregator holds a ring buffer per (project, app), mirrors every line to
// a log file, and fans lines out to subscribers.
type Aggregator struct {
	capacity int
	files    *fileWriter

	mu    sync.Mutex
	rings map[Key]*Ring

	subMu sync.RWMutex
	subs  map[chan Event]struct{}
}

// NewAggregator creates an aggregator writing files under dir.
func NewAggregator(dir string, capacity int) *Aggregator {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Aggregator{
		capacity: capacity,
		files:    newFileWriter(dir),
		rings:    make(map[Key]*Ring),
		subs:     make(map[chan Event]struct{}),
	}
}

func (a *Aggregator) ring(key Key) *Ring {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.rings[key]
	if !ok {
		r = NewRing(a.capacity)
		a.rings[key] = r
	}
	return r
}

// AddLine timestamps text, appends it to the buffer and log file, and
// notifies subscribers. Returns true if the buffer evicted a line.
func (a *Aggregator) AddLine(project, app, text string) bool {
	key := Key{Project: project, App: app}
	line := Line{Time: time.Now(), Text: text}

	didEvict := a.ring(key).Add(line)
	a.files.append(key, FormatLine(line))

	ev := Event{Project: project, App: app, Line: line, DidEvict: didEvict}
	a.subMu.RLock()
	for ch := range a.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber too slow, drop
		}
	}
	a.subMu.RUnlock()

	return didEvict
}

// Subscribe returns a channel receiving every added line and a function
// that unsubscribes and closes the channel.
func (a *Aggregator) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 100
	}
	ch := make(chan Event, buffer)
	a.subMu.Lock()
	a.subs[ch] = struct{}{}
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			if _, ok := a.subs[ch]; ok {
				delete(a.subs, ch)
				close(ch)
			}
			a.subMu.Unlock()
		})
	}
}

// Lines returns the buffered lines for (project, app), oldest first.
func (a *Aggregator) Lines(project, app string) []Line {
	return a.ring(Key{project, app}).Lines()
}

// Tail returns the last n buffered lines.
func (a *Aggregator) Tail(project, app string, n int) []Line {
	return a.ring(Key{project, app}).Tail(n)
}

// Clear empties the buffer for (project, app). The log file is kept.
func (a *Aggregator) Clear(project, app string) {
	a.ring(Key{project, app}).Clear()
}

// Search runs a case-insensitive search over the current buffer.
func (a *Aggregator) Search(project, app, query string) *Search {
	return NewSearch(a.Lines(project, app), query)
}

// Path returns the log file path for (project, app).
func (a *Aggregator) Path(project, app string) string {
	return a.files.Path(Key{project, app})
}

// LoadFromFile replaces the buffer with the tail of the log file. A missing
// file leaves the buffer empty.
func (a *Aggregator) LoadFromFile(project, app string) error {
	key := Key{project, app}
	a.files.flush()

	texts, err := readLines(a.files.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load log file: %w", err)
	}
	if len(texts) > a.capacity {
		texts = texts[len(texts)-a.capacity:]
	}

	today := time.Now()
	lines := make([]Line, len(texts))
	for i, s := range texts {
		lines[i] = ParseLine(s, today)
	}
	a.ring(key).Replace(lines)
	return nil
}

// TruncateFile rewrites the log file for (project, app) to its last
// capacity lines when it has grown past that.
func (a *Aggregator) TruncateFile(project, app string) error {
	return a.files.truncate(Key{project, app}, a.capacity)
}

// TruncateAll truncates every log file on disk and every buffered stream.
func (a *Aggregator) TruncateAll() error {
	keys := make(map[Key]bool)
	a.mu.Lock()
	for k := range a.rings {
		keys[k] = true
	}
	a.mu.Unlock()

	matches, _ := filepath.Glob(filepath.Join(a.files.dir, "*", "*.log"))
	for _, m := range matches {
		keys[Key{
			Project: filepath.Base(filepath.Dir(m)),
			App:     strings.TrimSuffix(filepath.Base(m), ".log"),
		}] = true
	}

	var errs []error
	for k := range keys {
		if err := a.TruncateFile(k.Project, k.App); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush blocks until every queued file write has been applied.
func (a *Aggregator) Flush() {
	a.files.flush()
}

// Close flushes and closes the log files and all subscriber channels.
func (a *Aggregator) Close() {
	a.files.close()

	a.subMu.Lock()
	for ch := range a.subs {
		close(ch)
	}
	a.subs = make(map[chan Event]struct{})
	a.subMu.Unlock()
}
