// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
	// Two checkouts of the same monorepo
	projects: [
		{
			alias: main
			path: /src/acme
			index: 0
		}
		{
			alias: feature
			path: /src/acme-feature
			index: 1
		}
	]

	# Apps shared by every project
	apps: [
		{
			name: api
			base_port: 3000
			command: pnpm dev
			dir: apps/api
			port_env: API_PORT
			host_env: API_HOST
		}
		{
			name: web
			base_port: 4000
			command: pnpm --filter web dev
			port_env: WEB_PORT
			host_env: WEB_HOST
		}
	]
}`

func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewLoader().LoadWithDefaults(context.Background(), path)
	require.NoError(t, err)
	return cfg
}

func TestLoader_Load_HJSON(t *testing.T) {
	cfg := loadFromString(t, sampleConfig)

	require.Len(t, cfg.Projects, 2)
	assert.Equal(t, "main", cfg.Projects[0].Alias)
	assert.Equal(t, "/src/acme-feature", cfg.Projects[1].Path)
	assert.Equal(t, 1, cfg.Projects[1].Index)

	require.Len(t, cfg.Apps, 2)
	assert.Equal(t, "api", cfg.Apps[0].Name)
	assert.Equal(t, 3000, cfg.Apps[0].BasePort)
	assert.Equal(t, "apps/api", cfg.Apps[0].Dir)
	assert.Equal(t, "pnpm --filter web dev", cfg.Apps[1].Command)
}

func TestLoader_Defaults(t *testing.T) {
	cfg := loadFromString(t, sampleConfig)

	assert.Equal(t, []string{"dev", "dev_alt"}, cfg.Profiles)
	assert.Equal(t, 10, cfg.PortStride)
	assert.Equal(t, 10000, cfg.LogBufferSize)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Timing.PortRetries)
	assert.Equal(t, 60, cfg.Timing.TruncateEvery)
	assert.True(t, filepath.IsAbs(cfg.StateFile))
	assert.Equal(t, "state.json", filepath.Base(cfg.StateFile))
	assert.Equal(t, "crashes", filepath.Base(cfg.Crashes.Dir))
	assert.Equal(t, "168h", cfg.Crashes.MaxAge)
	assert.Equal(t, 100, cfg.Crashes.MaxCount)
	assert.Equal(t, 200, cfg.Crashes.Lines)

	d := cfg.Timing.Durations()
	assert.Equal(t, 3*time.Second, d.ReadinessDelay)
	assert.Equal(t, 5*time.Second, d.KillTimeout)
	assert.Equal(t, 100*time.Millisecond, d.KillPoll)
	assert.Equal(t, 2*time.Second, d.StatsInterval)
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hjson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoader_Load_InvalidHJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{ projects: [ "), 0644))

	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse hjson")
}

func TestLoader_LoadWithDefaults_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{ projects: [], apps: [] }`), 0644))

	_, err := NewLoader().LoadWithDefaults(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestConfig_Port(t *testing.T) {
	cfg := loadFromString(t, sampleConfig)
	api, _ := cfg.FindApp("api")
	main, _ := cfg.FindProject("main")
	feature, _ := cfg.FindProject("feature")

	assert.Equal(t, 3000, cfg.Port(api, main))
	assert.Equal(t, 3010, cfg.Port(api, feature))
	assert.Equal(t, []int{3010, 4010}, cfg.ProjectPorts(feature))
}

func TestConfig_PortsNeverCollideAcrossProjects(t *testing.T) {
	cfg := loadFromString(t, sampleConfig)

	seen := make(map[int]string)
	for _, p := range cfg.Projects {
		for _, app := range cfg.Apps {
			port := cfg.Port(app, p)
			owner := p.Alias + "/" + app.Name
			prev, dup := seen[port]
			assert.False(t, dup, "%s and %s share port %d", prev, owner, port)
			seen[port] = owner
		}
	}
}

func TestConfig_LaunchEnv(t *testing.T) {
	cfg := loadFromString(t, sampleConfig)
	feature, _ := cfg.FindProject("feature")

	env := cfg.LaunchEnv(feature)
	assert.Equal(t, "3010", env["API_PORT"])
	assert.Equal(t, "localhost:3010", env["API_HOST"])
	assert.Equal(t, "4010", env["WEB_PORT"])
	assert.Equal(t, "localhost:4010", env["WEB_HOST"])
}

func TestConfig_NextProfile(t *testing.T) {
	cfg := &Config{Profiles: []string{"dev", "dev_alt", "staging"}}

	assert.Equal(t, "dev", cfg.DefaultProfile())
	assert.Equal(t, "dev_alt", cfg.NextProfile("dev"))
	assert.Equal(t, "staging", cfg.NextProfile("dev_alt"))
	assert.Equal(t, "dev", cfg.NextProfile("staging"))
	assert.Equal(t, "dev", cfg.NextProfile("bogus"))
	assert.True(t, cfg.HasProfile("staging"))
	assert.False(t, cfg.HasProfile("prod"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "code"), ExpandHome("~/code"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}
