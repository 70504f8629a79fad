// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package crashes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/paddock/internal/events"
	"github.com/wingedpig/paddock/internal/logs"
)

type fakeLogs map[string][]logs.Line

func (f fakeLogs) Lines(project, app string) []logs.Line {
	return f[project+"/"+app]
}

func lines(n int) []logs.Line {
	out := make([]logs.Line, n)
	for i := range out {
		out[i] = logs.Line{Time: time.Now(), Text: fmt.Sprintf("line %d", i+1)}
	}
	return out
}

func newManager(t *testing.T, cfg Config, src LogSource, bus events.Bus) *Manager {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	mgr, err := NewManager(cfg, src, bus)
	require.NoError(t, err)
	return mgr
}

func crashAt(ts time.Time, project, app string) Crash {
	return Crash{
		Version:   reportVersion,
		ID:        ts.Format(idTimeFormat) + "-" + project + "-" + app,
		Project:   project,
		App:       app,
		Timestamp: ts,
		ExitCode:  1,
		Lines:     []logs.Line{},
	}
}

func TestManager_SaveAndGet(t *testing.T) {
	mgr := newManager(t, Config{}, fakeLogs{}, nil)

	crash := crashAt(time.Now(), "main", "api")
	crash.PID = 4242
	crash.Lines = lines(2)
	require.NoError(t, mgr.Save(crash))

	loaded, err := mgr.Get(crash.ID)
	require.NoError(t, err)
	assert.Equal(t, crash.ID, loaded.ID)
	assert.Equal(t, "main", loaded.Project)
	assert.Equal(t, "api", loaded.App)
	assert.Equal(t, 4242, loaded.PID)
	assert.Equal(t, 1, loaded.ExitCode)
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, "line 2", loaded.Lines[1].Text)
}

func TestManager_GetNotFound(t *testing.T) {
	mgr := newManager(t, Config{}, fakeLogs{}, nil)

	_, err := mgr.Get("20260101-120000.000-main-api")
	assert.ErrorIs(t, err, ErrNotFound)

	// Anything that isn't a report ID never reaches the filesystem.
	_, err = mgr.Get("../state")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, mgr.Delete("../../etc/passwd"), ErrNotFound)
}

func TestManager_ListNewestFirst(t *testing.T) {
	mgr := newManager(t, Config{}, fakeLogs{}, nil)

	base := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, mgr.Save(crashAt(base.Add(time.Duration(i)*time.Second), "main", "api")))
	}

	summaries, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.True(t, summaries[0].Timestamp.After(summaries[1].Timestamp))
	assert.True(t, summaries[1].Timestamp.After(summaries[2].Timestamp))

	newest, err := mgr.Newest()
	require.NoError(t, err)
	assert.Equal(t, summaries[0].ID, newest.ID)
}

func TestManager_ListEmpty(t *testing.T) {
	mgr := newManager(t, Config{}, fakeLogs{}, nil)

	summaries, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, summaries)

	newest, err := mgr.Newest()
	require.NoError(t, err)
	assert.Nil(t, newest)
}

func TestManager_ListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	mgr := newManager(t, Config{Dir: dir}, fakeLogs{}, nil)
	require.NoError(t, mgr.Save(crashAt(time.Now(), "main", "api")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101-120000.000-main-web.json"), []byte("not json"), 0644))

	summaries, err := mgr.List()
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestManager_DeleteAndClear(t *testing.T) {
	mgr := newManager(t, Config{}, fakeLogs{}, nil)

	base := time.Now()
	a := crashAt(base, "main", "api")
	b := crashAt(base.Add(time.Second), "alt", "web")
	require.NoError(t, mgr.Save(a))
	require.NoError(t, mgr.Save(b))

	require.NoError(t, mgr.Delete(a.ID))
	assert.ErrorIs(t, mgr.Delete(a.ID), ErrNotFound)

	summaries, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, b.ID, summaries[0].ID)

	require.NoError(t, mgr.Clear())
	summaries, err = mgr.List()
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestManager_CleanupByCount(t *testing.T) {
	mgr := newManager(t, Config{MaxCount: 2}, fakeLogs{}, nil)

	base := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, mgr.Save(crashAt(base.Add(time.Duration(i)*time.Second), "main", "api")))
	}
	mgr.cleanup()

	summaries, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, base.Add(3*time.Second).Format(idTimeFormat)+"-main-api", summaries[0].ID)
}

func TestManager_CleanupByAge(t *testing.T) {
	mgr := newManager(t, Config{MaxAge: time.Hour}, fakeLogs{}, nil)

	require.NoError(t, mgr.Save(crashAt(time.Now().Add(-2*time.Hour), "main", "api")))
	fresh := crashAt(time.Now(), "main", "api")
	require.NoError(t, mgr.Save(fresh))
	mgr.cleanup()

	summaries, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, fresh.ID, summaries[0].ID)
}

func TestManager_CaptureKeepsTail(t *testing.T) {
	src := fakeLogs{"main/api": lines(10)}
	mgr := newManager(t, Config{Lines: 3}, src, nil)

	crash := mgr.capture(events.Event{
		Type:      events.AppCrashed,
		Timestamp: time.Now(),
		Project:   "main",
		App:       "api",
		Payload:   map[string]interface{}{"pid": 99, "exit_code": 2},
	})

	assert.Equal(t, 99, crash.PID)
	assert.Equal(t, 2, crash.ExitCode)
	assert.Equal(t, 7, crash.Dropped)
	require.Len(t, crash.Lines, 3)
	assert.Equal(t, "line 8", crash.Lines[0].Text)
	assert.Equal(t, "line 10", crash.Lines[2].Text)
}

func TestManager_CaptureSpawnFailure(t *testing.T) {
	mgr := newManager(t, Config{}, fakeLogs{}, nil)

	crash := mgr.capture(events.Event{
		Type:    events.AppCrashed,
		Project: "main",
		App:     "api",
		Payload: map[string]interface{}{"error": "exec: not found"},
	})

	assert.Equal(t, "exec: not found", crash.Error)
	assert.Equal(t, -1, crash.ExitCode)
	assert.Zero(t, crash.PID)
	assert.NotNil(t, crash.Lines)
	assert.False(t, crash.Timestamp.IsZero())
}

func TestManager_RecordsCrashEvents(t *testing.T) {
	bus := events.NewMemoryBus(0, 0)
	defer bus.Close()

	src := fakeLogs{"main/api": lines(5)}
	mgr := newManager(t, Config{Settle: 10 * time.Millisecond}, src, bus)
	require.NoError(t, mgr.Subscribe())
	defer mgr.Close()

	require.NoError(t, bus.Publish(context.Background(), events.Event{
		Type:    events.AppStopped,
		Project: "main",
		App:     "api",
	}))
	require.NoError(t, bus.Publish(context.Background(), events.Event{
		Type:    events.AppCrashed,
		Project: "main",
		App:     "api",
		Payload: map[string]interface{}{"pid": 7, "exit_code": 1},
	}))

	var crash *Crash
	require.Eventually(t, func() bool {
		c, err := mgr.Newest()
		crash = c
		return err == nil && c != nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "main", crash.Project)
	assert.Equal(t, 7, crash.PID)
	assert.Len(t, crash.Lines, 5)

	summaries, err := mgr.List()
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}
