// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package ports frees TCP ports held by stray processes before apps launch.
package ports

import (
	"context"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAttempts   = 5
	defaultRetryDelay = 500 * time.Millisecond
	defaultSettle     = 300 * time.Millisecond
)

// BusyError reports ports still unbindable after every attempt.
type BusyError struct {
	Ports []int
}

func (e *BusyError) Error() string {
	strs := make([]string, len(e.Ports))
	for i, p := range e.Ports {
		strs[i] = strconv.Itoa(p)
	}
	return "ports still busy: " + strings.Join(strs, ", ")
}

// TreeKiller terminates a process and its descendants.
type TreeKiller interface {
	KillTree(ctx context.Context, pid int) error
}

// Reconciler kills whatever holds a set of ports and verifies they bind.
type Reconciler struct {
	killer     TreeKiller
	finders    []Finder
	attempts   int
	retryDelay time.Duration
	settle     time.Duration
	self       int
	probe      func(port int) bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithFinders replaces the default PID finders.
func WithFinders(finders ...Finder) Option {
	return func(r *Reconciler) { r.finders = finders }
}

// WithAttempts sets the number of kill rounds.
func WithAttempts(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithDelays sets the per-round retry delay and the post-kill settle time.
func WithDelays(retry, settle time.Duration) Option {
	return func(r *Reconciler) {
		if retry >= 0 {
			r.retryDelay = retry
		}
		if settle >= 0 {
			r.settle = settle
		}
	}
}

// WithProbe replaces the bind probe.
func WithProbe(fn func(port int) bool) Option {
	return func(r *Reconciler) { r.probe = fn }
}

// NewReconciler creates a Reconciler that kills with killer.
func NewReconciler(killer TreeKiller, opts ...Option) *Reconciler {
	r := &Reconciler{
		killer:     killer,
		finders:    DefaultFinders(),
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
		settle:     defaultSettle,
		self:       os.Getpid(),
		probe:      CanBind,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CanBind reports whether a TCP listener can be opened on port.
func CanBind(port int) bool {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

// EnsureAvailable returns nil once every port binds, or a *BusyError after
// the configured number of rounds.
func (r *Reconciler) EnsureAvailable(ctx context.Context, ports []int) error {
	busy := r.busy(ports)
	if len(busy) == 0 {
		return nil
	}

	for attempt := 1; attempt <= r.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryDelay):
		}

		var pids []int
		for _, port := range busy {
			found := findAll(ctx, r.finders, port, r.self)
			if len(found) > 0 {
				log.Info("Killing processes holding port", "port", port, "pids", found, "attempt", attempt)
			}
			pids = append(pids, found...)
		}
		r.killAll(ctx, pids)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.settle):
		}

		busy = r.busy(busy)
		if len(busy) == 0 {
			return nil
		}
	}

	return &BusyError{Ports: busy}
}

func (r *Reconciler) busy(ports []int) []int {
	var busy []int
	for _, port := range ports {
		if !r.probe(port) {
			busy = append(busy, port)
		}
	}
	return busy
}

func (r *Reconciler) killAll(ctx context.Context, pids []int) {
	seen := make(map[int]bool)
	var g errgroup.Group
	for _, pid := range pids {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		pid := pid
		g.Go(func() error {
			if err := r.killer.KillTree(ctx, pid); err != nil {
				log.Warn("Failed to kill port holder", "pid", pid, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
