// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package proc provides OS process primitives: liveness checks, process tree
// discovery, and two-phase tree termination.
package proc

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	ps "github.com/mitchellh/go-ps"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	defaultKillTimeout = 5 * time.Second
	defaultKillPoll    = 100 * time.Millisecond
)

// Alive reports whether a process with the given PID exists and has not
// exited. A process owned by another user (EPERM) counts as alive; a zombie
// waiting to be reaped does not.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, syscall.Signal(0))
	if err != nil && !errors.Is(err, syscall.EPERM) {
		return false
	}
	return !isZombie(pid)
}

func isZombie(pid int) bool {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := p.Status()
	if err != nil {
		return false
	}
	for _, s := range status {
		if s == process.Zombie {
			return true
		}
	}
	return false
}

// Descendants returns the PIDs of every process below pid in the process
// tree, parents before children. Returns nil if the table can't be read.
func Descendants(pid int) []int {
	procs, err := ps.Processes()
	if err != nil {
		log.Debug("Process table unavailable", "err", err)
		return nil
	}

	children := make(map[int][]int)
	for _, p := range procs {
		children[p.PPid()] = append(children[p.PPid()], p.Pid())
	}

	var result []int
	queue := []int{pid}
	seen := map[int]bool{pid: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if seen[child] {
				continue
			}
			seen[child] = true
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	return result
}

// Tree returns pid followed by its descendants.
func Tree(pid int) []int {
	return append([]int{pid}, Descendants(pid)...)
}

// Killer terminates process trees: a graceful signal first, then a forced
// kill for anything still alive after Timeout.
type Killer struct {
	Timeout time.Duration
	Poll    time.Duration
}

// NewKiller creates a Killer with the given timeout and poll interval.
// Zero values fall back to defaults.
func NewKiller(timeout, poll time.Duration) *Killer {
	if timeout <= 0 {
		timeout = defaultKillTimeout
	}
	if poll <= 0 {
		poll = defaultKillPoll
	}
	return &Killer{Timeout: timeout, Poll: poll}
}

// KillTree sends SIGTERM to pid, its process group, and every descendant,
// waits for them to exit, and escalates to SIGKILL after the timeout.
// It returns once the root is gone or the forced kill has been sent.
func (k *Killer) KillTree(ctx context.Context, pid int) error {
	if !Alive(pid) {
		return nil
	}

	// Snapshot the tree before signalling; children get reparented once
	// their parent dies and would otherwise be missed.
	tree := Tree(pid)
	signalTree(pid, tree, syscall.SIGTERM)

	if k.waitGone(ctx, tree) {
		return nil
	}

	log.Warn("Process tree did not exit after SIGTERM, sending SIGKILL", "pid", pid)
	// Pick up anything spawned while we were waiting.
	tree = append(tree, Descendants(pid)...)
	signalTree(pid, tree, syscall.SIGKILL)

	// SIGKILL can't be ignored; a short wait lets the kernel reap.
	short, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	k.waitGone(short, tree)

	if Alive(pid) {
		return errors.New("process survived SIGKILL")
	}
	return nil
}

// waitGone polls until every pid in tree is dead, the timeout passes, or
// ctx is done. Returns true if the tree is gone.
func (k *Killer) waitGone(ctx context.Context, tree []int) bool {
	timeout := k.Timeout
	if timeout <= 0 {
		timeout = defaultKillTimeout
	}
	poll := k.Poll
	if poll <= 0 {
		poll = defaultKillPoll
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if !anyAlive(tree) {
			return true
		}
		select {
		case <-ctx.Done():
			return !anyAlive(tree)
		case <-deadline.C:
			return !anyAlive(tree)
		case <-ticker.C:
		}
	}
}

func anyAlive(pids []int) bool {
	for _, pid := range pids {
		if Alive(pid) {
			return true
		}
	}
	return false
}

// signalTree signals the process group led by root (apps are spawned with
// Setpgid) and then each pid individually, for descendants that moved to
// their own group.
func signalTree(root int, tree []int, sig syscall.Signal) {
	_ = syscall.Kill(-root, sig)
	for _, pid := range tree {
		_ = syscall.Kill(pid, sig)
	}
}
