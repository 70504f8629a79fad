// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package git reports branch and dirty state of project checkouts.
package git

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// UnknownBranch is reported when git can't be queried.
const UnknownBranch = "unknown"

const commandTimeout = 5 * time.Second

// Status is the checkout state shown next to a project.
type Status struct {
	Branch   string `json:"branch"`
	Detached bool   `json:"detached,omitempty"`
	Dirty    bool   `json:"dirty"`
	Changes  int    `json:"changes,omitempty"`
}

// Runner executes git with args in dir and returns stdout.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs the git binary.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	return string(out), err
}

// Probe queries git and caches the last result per path.
type Probe struct {
	runner Runner

	mu    sync.RWMutex
	cache map[string]Status
}

// NewProbe creates a probe. A nil runner uses the git binary.
func NewProbe(runner Runner) *Probe {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Probe{runner: runner, cache: make(map[string]Status)}
}

// Status queries git for path. Failures yield the unknown branch, never an error.
func (p *Probe) Status(ctx context.Context, path string) Status {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var st Status
	out, err := p.runner.Run(ctx, path, "branch", "--show-current")
	if err != nil {
		log.Debug("git branch failed", "path", path, "err", err)
		return Status{Branch: UnknownBranch}
	}
	st.Branch = strings.TrimSpace(out)
	if st.Branch == "" {
		// Detached HEAD
		commit, err := p.runner.Run(ctx, path, "rev-parse", "--short", "HEAD")
		if err != nil || strings.TrimSpace(commit) == "" {
			return Status{Branch: UnknownBranch}
		}
		st.Branch = strings.TrimSpace(commit)
		st.Detached = true
	}

	porcelain, err := p.runner.Run(ctx, path, "status", "--porcelain")
	if err != nil {
		log.Debug("git status failed", "path", path, "err", err)
		return st
	}
	st.Changes = CountChanges(porcelain)
	st.Dirty = st.Changes > 0
	return st
}

// Refresh queries every path concurrently and replaces the cache.
func (p *Probe) Refresh(ctx context.Context, paths []string) {
	results := make([]Status, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = p.Status(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	cache := make(map[string]Status, len(paths))
	for i, path := range paths {
		cache[path] = results[i]
	}
	p.mu.Lock()
	p.cache = cache
	p.mu.Unlock()
}

// Cached returns the last refreshed status for path.
func (p *Probe) Cached(path string) (Status, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st, ok := p.cache[path]
	return st, ok
}

// CountChanges counts entries in `git status --porcelain` output.
func CountChanges(porcelain string) int {
	n := 0
	for _, line := range strings.Split(strings.TrimRight(porcelain, " \t\r\n"), "\n") {
		if len(line) >= 3 {
			n++
		}
	}
	return n
}
