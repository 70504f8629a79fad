// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package crashes records a report, with the tail of the app's output,
// whenever an app exits unexpectedly.
package crashes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wingedpig/paddock/internal/events"
	"github.com/wingedpig/paddock/internal/logs"
)

const (
	reportVersion = "1.0"
	idTimeFormat  = "20060102-150405.000"
)

// ErrNotFound is returned for an unknown crash ID.
var ErrNotFound = errors.New("crash not found")

var idPattern = regexp.MustCompile(`^\d{8}-\d{6}\.\d{3}-[A-Za-z0-9_.-]+$`)

// Config holds configuration for crash storage.
type Config struct {
	Dir      string        // Directory holding one JSON file per crash
	MaxAge   time.Duration // Older reports are removed
	MaxCount int           // Only the newest reports are kept
	Lines    int           // Output lines captured per report
	Settle   time.Duration // Wait for trailing output before capturing
}

// LogSource provides the buffered output of an app.
type LogSource interface {
	Lines(project, app string) []logs.Line
}

// Manager captures and stores crash reports.
type Manager struct {
	mu     sync.RWMutex
	config Config
	logs   LogSource
	bus    events.Bus

	cancel func()
	wg     sync.WaitGroup
}

// NewManager creates a crash manager, creating the reports directory.
func NewManager(cfg Config, src LogSource, bus events.Bus) (*Manager, error) {
	if cfg.Dir == "" {
		cfg.Dir = filepath.Join(".paddock", "crashes")
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.MaxCount == 0 {
		cfg.MaxCount = 100
	}
	if cfg.Lines == 0 {
		cfg.Lines = 200
	}
	if cfg.Settle == 0 {
		cfg.Settle = 250 * time.Millisecond
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create crashes directory: %w", err)
	}

	return &Manager{
		config: cfg,
		logs:   src,
		bus:    bus,
		cancel: func() {},
	}, nil
}

// Subscribe starts recording a report for every app.crashed event.
func (m *Manager) Subscribe() error {
	if m.bus == nil {
		return nil
	}
	ch, cancel, err := m.bus.SubscribeChan(events.AppCrashed, 64)
	if err != nil {
		return err
	}
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for e := range ch {
			m.handleCrashEvent(e)
		}
	}()
	return nil
}

// Close stops recording and waits for a report in progress.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// handleCrashEvent captures and saves a report for an app.crashed event.
func (m *Manager) handleCrashEvent(e events.Event) {
	if e.Project == "" || e.App == "" {
		return
	}

	// Output is read concurrently with the exit; give the readers a moment.
	time.Sleep(m.config.Settle)

	crash := m.capture(e)
	if err := m.Save(crash); err != nil {
		log.Warn("Failed to save crash report", "project", e.Project, "app", e.App, "err", err)
		return
	}
	log.Info("Recorded crash", "id", crash.ID, "project", crash.Project, "app", crash.App, "code", crash.ExitCode)

	m.cleanup()
}

// capture builds a report from e and the app's current output buffer.
func (m *Manager) capture(e events.Event) Crash {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	crash := Crash{
		Version:   reportVersion,
		ID:        ts.Format(idTimeFormat) + "-" + e.Project + "-" + e.App,
		Project:   e.Project,
		App:       e.App,
		Timestamp: ts,
		ExitCode:  -1,
	}
	if pid, ok := e.Payload["pid"].(int); ok {
		crash.PID = pid
	}
	if code, ok := e.Payload["exit_code"].(int); ok {
		crash.ExitCode = code
	}
	if msg, ok := e.Payload["error"].(string); ok {
		crash.Error = msg
	}

	lines := m.logs.Lines(e.Project, e.App)
	if n := len(lines) - m.config.Lines; n > 0 {
		crash.Dropped = n
		lines = lines[n:]
	}
	crash.Lines = lines
	if crash.Lines == nil {
		crash.Lines = []logs.Line{}
	}
	return crash
}

// Save writes a crash report to disk.
func (m *Manager) Save(crash Crash) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(crash, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal crash: %w", err)
	}
	if err := os.WriteFile(m.path(crash.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write crash file: %w", err)
	}
	return nil
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.config.Dir, id+".json")
}

// List returns all crashes, newest first.
func (m *Manager) List() ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids, err := m.ids()
	if err != nil {
		return nil, err
	}

	summaries := []Summary{}
	for _, id := range ids {
		crash, err := m.load(id)
		if err != nil {
			continue
		}
		summaries = append(summaries, Summary{
			ID:        crash.ID,
			Project:   crash.Project,
			App:       crash.App,
			Timestamp: crash.Timestamp,
			ExitCode:  crash.ExitCode,
			Error:     crash.Error,
		})
	}
	return summaries, nil
}

// Get retrieves a crash by ID.
func (m *Manager) Get(id string) (*Crash, error) {
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.load(id)
}

// Newest returns the most recent crash, or nil when there is none.
func (m *Manager) Newest() (*Crash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids, err := m.ids()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if crash, err := m.load(id); err == nil {
			return crash, nil
		}
	}
	return nil, nil
}

// Delete removes a crash by ID.
func (m *Manager) Delete(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete crash: %w", err)
	}
	return nil
}

// Clear removes all crashes.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.ids()
	if err != nil {
		return err
	}
	for _, id := range ids {
		os.Remove(m.path(id))
	}
	return nil
}

// ids returns the stored crash IDs, newest first. IDs start with their
// timestamp, so name order is time order.
func (m *Manager) ids() ([]string, error) {
	entries, err := os.ReadDir(m.config.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read crashes directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		id, ok := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !ok || !idPattern.MatchString(id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

func (m *Manager) load(id string) (*Crash, error) {
	data, err := os.ReadFile(m.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read crash file: %w", err)
	}

	var crash Crash
	if err := json.Unmarshal(data, &crash); err != nil {
		return nil, fmt.Errorf("failed to unmarshal crash: %w", err)
	}
	return &crash, nil
}

// cleanup removes reports beyond the age and count limits.
func (m *Manager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.ids()
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-m.config.MaxAge)
	for i, id := range ids {
		ts, err := time.ParseInLocation(idTimeFormat, id[:len(idTimeFormat)], time.Local)
		if i >= m.config.MaxCount || (err == nil && ts.Before(cutoff)) {
			os.Remove(m.path(id))
		}
	}
}
