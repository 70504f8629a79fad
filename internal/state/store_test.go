// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, alive map[int]bool) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "state.json")
	return NewStore(path, "dev", WithLiveness(func(pid int) bool {
		return alive[pid]
	}))
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := newTestStore(t, nil)

	st := s.Load()
	assert.Equal(t, "dev", st.DefaultConfig)
	assert.NotNil(t, st.ActiveProjects)
	assert.Empty(t, st.ActiveProjects)
}

func TestStore_LoadCorruptFile(t *testing.T) {
	s := newTestStore(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	st := s.Load()
	assert.Equal(t, "dev", st.DefaultConfig)
	assert.Empty(t, st.ActiveProjects)
}

func TestStore_LoadMergesDefaults(t *testing.T) {
	s := newTestStore(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	raw := `{"activeProjects": {"main": {"processes": {"api": {"pid": 10, "port": 3000, "status": "weird"}, "web": null}}}}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(raw), 0644))

	st := s.Load()
	assert.Equal(t, "dev", st.DefaultConfig)
	rt := st.ActiveProjects["main"]
	require.NotNil(t, rt)
	assert.Equal(t, "dev", rt.DopplerConfig)
	require.Contains(t, rt.Processes, "api")
	assert.NotContains(t, rt.Processes, "web")
	assert.Equal(t, StatusStopped, rt.Processes["api"].Status)
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t, nil)

	st := s.Load()
	st.DefaultConfig = "dev_alt"
	rt := st.Runtime("main", "dev_alt")
	rt.Processes["api"] = &ProcessRecord{PID: 42, Port: 3000, Status: StatusRunning}
	require.NoError(t, s.Save(st))

	_, err := os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded := s.Load()
	assert.Equal(t, "dev_alt", loaded.DefaultConfig)
	rec := loaded.Record("main", "api")
	require.NotNil(t, rec)
	assert.Equal(t, 42, rec.PID)
	assert.Equal(t, 3000, rec.Port)
	assert.Equal(t, StatusRunning, rec.Status)
	require.NotNil(t, loaded.ActiveProjects["main"].StartedAt)
}

func TestStore_JSONFieldNames(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.Update(func(st *State) {
		st.Runtime("main", "dev").Processes["api"] = &ProcessRecord{PID: 7, Port: 3000, Status: StatusStarting}
	})
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	for _, key := range []string{`"defaultConfig"`, `"activeProjects"`, `"dopplerConfig"`, `"startedAt"`, `"processes"`, `"pid"`, `"port"`, `"status": "starting"`} {
		assert.Contains(t, string(data), key)
	}
}

func TestStore_UpdateConcurrent(t *testing.T) {
	s := newTestStore(t, nil)

	var wg sync.WaitGroup
	apps := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for i, name := range apps {
		wg.Add(1)
		go func(pid int, name string) {
			defer wg.Done()
			_, err := s.Update(func(st *State) {
				st.Runtime("main", "dev").Processes[name] = &ProcessRecord{PID: pid, Status: StatusRunning}
			})
			assert.NoError(t, err)
		}(i+1, name)
	}
	wg.Wait()

	assert.Len(t, s.Load().ActiveProjects["main"].Processes, len(apps))
}

func TestStore_ReconcileLiveness(t *testing.T) {
	s := newTestStore(t, map[int]bool{100: true})

	_, err := s.Update(func(st *State) {
		main := st.Runtime("main", "dev")
		main.Processes["api"] = &ProcessRecord{PID: 100, Port: 3000, Status: StatusRunning}
		main.Processes["web"] = &ProcessRecord{PID: 101, Port: 4000, Status: StatusStarting}

		feature := st.Runtime("feature", "dev")
		feature.Processes["api"] = &ProcessRecord{PID: 200, Port: 3010, Status: StatusRunning}
		feature.Processes["web"] = &ProcessRecord{PID: 0, Port: 4010, Status: StatusStopped}
	})
	require.NoError(t, err)

	st, err := s.ReconcileLiveness()
	require.NoError(t, err)

	assert.Equal(t, StatusRunning, st.Record("main", "api").Status)
	assert.Equal(t, StatusStopped, st.Record("main", "web").Status)
	assert.NotContains(t, st.ActiveProjects, "feature", "all-stopped project should be dropped")

	// The result is persisted.
	reloaded := s.Load()
	assert.Equal(t, StatusStopped, reloaded.Record("main", "web").Status)
	assert.NotContains(t, reloaded.ActiveProjects, "feature")
}

func TestStore_ReconcileKeepsErrors(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.Update(func(st *State) {
		// A spawn failure and a crash whose PID is long gone.
		st.Runtime("main", "dev").Processes["api"] = &ProcessRecord{PID: 0, Port: 3000, Status: StatusError}
		st.Runtime("feature", "dev").Processes["web"] = &ProcessRecord{PID: 4321, Port: 4010, Status: StatusError}
	})
	require.NoError(t, err)

	st, err := s.ReconcileLiveness()
	require.NoError(t, err)
	assert.Equal(t, StatusError, st.Record("main", "api").Status)
	require.Contains(t, st.ActiveProjects, "feature")
	assert.Equal(t, StatusError, st.Record("feature", "web").Status)
	assert.Equal(t, 4321, st.Record("feature", "web").PID)

	// A second tick changes nothing.
	st, err = s.ReconcileLiveness()
	require.NoError(t, err)
	assert.Equal(t, StatusError, st.Record("feature", "web").Status)
}

func TestState_DropIfStopped(t *testing.T) {
	st := &State{ActiveProjects: make(map[string]*ProjectRuntime)}
	rt := st.Runtime("main", "dev")
	rt.Processes["api"] = &ProcessRecord{Status: StatusRunning}

	st.DropIfStopped("main")
	assert.Contains(t, st.ActiveProjects, "main")

	rt.Processes["api"].Status = StatusError
	st.DropIfStopped("main")
	assert.Contains(t, st.ActiveProjects, "main", "a failed app keeps its runtime")

	rt.Processes["api"].Status = StatusStopped
	st.DropIfStopped("main")
	assert.NotContains(t, st.ActiveProjects, "main")
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusStarting.Active())
	assert.True(t, StatusRunning.Active())
	assert.False(t, StatusStopped.Active())
	assert.False(t, StatusError.Active())
	assert.False(t, Status("bogus").Valid())
}
