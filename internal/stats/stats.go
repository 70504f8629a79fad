// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package stats samples CPU, memory, and port status of running apps.
package stats

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/wingedpig/paddock/internal/proc"
	"golang.org/x/sync/errgroup"
)

const (
	dialTimeout = 250 * time.Millisecond
	parallelism = 8
)

// Key identifies a sampled app.
type Key struct {
	Project string
	App     string
}

// Target is one process to sample.
type Target struct {
	Project string
	App     string
	PID     int
	Port    int
}

// Stats is one sample. CPU and memory are summed over the process tree.
type Stats struct {
	CPUPercent float64   `json:"cpu_percent"`
	MemoryRSS  uint64    `json:"memory_rss"`
	Processes  int       `json:"processes"`
	Listening  bool      `json:"listening"`
	SampledAt  time.Time `json:"sampled_at"`
}

// Prober samples targets and caches the latest results.
type Prober struct {
	treeFn func(pid int) []int
	dialFn func(ctx context.Context, port int) bool

	mu     sync.RWMutex
	latest map[Key]Stats

	// Handles are kept between samples: CPU percent is measured against
	// the times a handle saw on its previous call.
	procMu sync.Mutex
	procs  map[int]*process.Process
	seen   map[int]bool
}

// NewProber creates a prober.
func NewProber() *Prober {
	return &Prober{
		treeFn: proc.Tree,
		dialFn: Listening,
		latest: make(map[Key]Stats),
		procs:  make(map[int]*process.Process),
	}
}

// Sample measures every target concurrently and replaces the cache.
// Failures produce zero values, never errors.
func (p *Prober) Sample(ctx context.Context, targets []Target) map[Key]Stats {
	p.procMu.Lock()
	p.seen = make(map[int]bool)
	p.procMu.Unlock()

	results := make([]Stats, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			results[i] = p.sampleOne(gctx, t)
			return nil
		})
	}
	_ = g.Wait()
	p.prune()

	out := make(map[Key]Stats, len(targets))
	for i, t := range targets {
		out[Key{t.Project, t.App}] = results[i]
	}

	p.mu.Lock()
	p.latest = out
	p.mu.Unlock()
	return out
}

func (p *Prober) sampleOne(ctx context.Context, t Target) Stats {
	s := Stats{SampledAt: time.Now()}
	if t.PID > 0 {
		for _, pid := range p.treeFn(t.PID) {
			ps, err := p.handle(ctx, pid)
			if err != nil {
				continue
			}
			s.Processes++
			// Zero on a handle's first sample.
			if cpu, err := ps.PercentWithContext(ctx, 0); err == nil {
				s.CPUPercent += cpu
			}
			if mem, err := ps.MemoryInfoWithContext(ctx); err == nil && mem != nil {
				s.MemoryRSS += mem.RSS
			}
		}
	}
	if t.Port > 0 {
		s.Listening = p.dialFn(ctx, t.Port)
	}
	return s
}

// handle returns the cached process handle for pid, creating it if needed.
func (p *Prober) handle(ctx context.Context, pid int) (*process.Process, error) {
	p.procMu.Lock()
	defer p.procMu.Unlock()

	if ps, ok := p.procs[pid]; ok {
		if running, err := ps.IsRunningWithContext(ctx); err == nil && running {
			p.seen[pid] = true
			return ps, nil
		}
		delete(p.procs, pid)
	}
	ps, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, err
	}
	p.procs[pid] = ps
	p.seen[pid] = true
	return ps, nil
}

// prune drops handles for processes not sampled in the last round.
func (p *Prober) prune() {
	p.procMu.Lock()
	defer p.procMu.Unlock()
	for pid := range p.procs {
		if !p.seen[pid] {
			delete(p.procs, pid)
		}
	}
}

// Latest returns the most recent sample for (project, app).
func (p *Prober) Latest(project, app string) (Stats, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.latest[Key{project, app}]
	return s, ok
}

// Listening reports whether something accepts TCP connections on the
// loopback port.
func Listening(ctx context.Context, port int) bool {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
