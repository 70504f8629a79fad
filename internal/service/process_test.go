// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/paddock/internal/config"
	"github.com/wingedpig/paddock/internal/proc"
)

func TestSpawn_SurvivesClosedOutput(t *testing.T) {
	dir := t.TempDir()
	app := config.App{Name: "api", BasePort: 3000, Command: "while true; do echo tick; echo tock 1>&2; sleep 0.05; done"}
	cfg := testConfig(dir, app)

	p, out, err := spawn(defaultShell, cfg, cfg.Projects[0], app, "dev")
	require.NoError(t, err)
	go func() {
		p.cmd.Wait()
		close(p.done)
	}()
	defer p.Kill(context.Background(), proc.NewKiller(2*time.Second, tick))

	// What a daemon exit does to the app's output.
	out.stdout.Close()
	out.stderr.Close()

	time.Sleep(500 * time.Millisecond)
	assert.True(t, p.Alive(), "app must keep running once nobody reads its output")
}

func TestLaunchEnv(t *testing.T) {
	dir := t.TempDir()
	api := config.App{Name: "api", BasePort: 3000, Env: map[string]string{"B": "2", "A": "1"}}
	cfg := testConfig(dir, api)

	env := launchEnv(cfg, cfg.Projects[1], api, "dev_alt")
	assert.Contains(t, env, "DOPPLER_CONFIG=dev_alt")
	assert.Contains(t, env, "PADDOCK_PROJECT=feature")

	var static []string
	for _, kv := range env {
		if kv == "A=1" || kv == "B=2" {
			static = append(static, kv)
		}
	}
	assert.Equal(t, []string{"A=1", "B=2"}, static)
}
