// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Ticker runs a function periodically. A tick that fires while the previous
// run is still in progress is skipped, not queued.
type Ticker struct {
	interval time.Duration
	fn       func(ctx context.Context)

	running atomic.Bool
	skipped atomic.Int64

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewTicker creates a ticker calling fn every interval.
func NewTicker(interval time.Duration, fn func(ctx context.Context)) *Ticker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Ticker{interval: interval, fn: fn, cancel: func() {}}
}

// Start begins ticking until Stop is called or ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tk := time.NewTicker(t.interval)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				t.Fire(ctx)
			}
		}
	}()
}

// Fire runs fn in the background unless a previous run is still active.
// Returns false if the tick was skipped.
func (t *Ticker) Fire(ctx context.Context) bool {
	if !t.running.CompareAndSwap(false, true) {
		n := t.skipped.Add(1)
		log.Debug("Tick skipped, previous still running", "skipped", n)
		return false
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.running.Store(false)
		t.fn(ctx)
	}()
	return true
}

// Skipped returns how many ticks were skipped.
func (t *Ticker) Skipped() int64 {
	return t.skipped.Load()
}

// Stop halts the ticker and waits for an in-flight run to finish.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		t.cancel()
		t.wg.Wait()
	})
}
