// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package proc

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startReaped starts cmd in its own process group and reaps it in the
// background so it doesn't linger as a zombie after being killed.
func startReaped(t *testing.T, cmd *exec.Cmd) <-chan struct{} {
	t.Helper()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	require.NoError(t, cmd.Start())

	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()
	t.Cleanup(func() {
		syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
	})
	return done
}

func TestAlive(t *testing.T) {
	assert.True(t, Alive(os.Getpid()))
	assert.False(t, Alive(0))
	assert.False(t, Alive(-1))

	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	assert.False(t, Alive(cmd.Process.Pid))
}

func TestDescendants(t *testing.T) {
	// The shell stays alive as the parent of two sleeps.
	cmd := exec.Command("sh", "-c", "sleep 30 & sleep 30 & wait")
	startReaped(t, cmd)

	var kids []int
	require.Eventually(t, func() bool {
		kids = Descendants(cmd.Process.Pid)
		return len(kids) >= 2
	}, 2*time.Second, 20*time.Millisecond)

	for _, pid := range kids {
		assert.True(t, Alive(pid))
	}
	assert.Equal(t, cmd.Process.Pid, Tree(cmd.Process.Pid)[0])
}

func TestKillTree_Graceful(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	done := startReaped(t, cmd)

	k := NewKiller(2*time.Second, 20*time.Millisecond)
	start := time.Now()
	require.NoError(t, k.KillTree(context.Background(), cmd.Process.Pid))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("process was not terminated")
	}
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestKillTree_EscalatesToSIGKILL(t *testing.T) {
	// The shell ignores SIGTERM, as do its children.
	cmd := exec.Command("sh", "-c", "trap '' TERM; sleep 30 & sleep 30 & wait")
	done := startReaped(t, cmd)

	var kids []int
	require.Eventually(t, func() bool {
		kids = Descendants(cmd.Process.Pid)
		return len(kids) >= 2
	}, 2*time.Second, 20*time.Millisecond)

	k := NewKiller(300*time.Millisecond, 20*time.Millisecond)
	require.NoError(t, k.KillTree(context.Background(), cmd.Process.Pid))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("process survived escalation")
	}
	require.Eventually(t, func() bool {
		return !anyAlive(kids)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestKillTree_AlreadyDead(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())

	k := NewKiller(0, 0)
	assert.NoError(t, k.KillTree(context.Background(), cmd.Process.Pid))
	assert.Equal(t, defaultKillTimeout, k.Timeout)
	assert.Equal(t, defaultKillPoll, k.Poll)
}

func TestDescendants_NoChildren(t *testing.T) {
	out, err := exec.Command("sh", "-c", "echo $$").Output()
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(out)))
	require.NoError(t, err)

	assert.Empty(t, Descendants(pid))
}
