// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicker_SkipsWhileRunning(t *testing.T) {
	release := make(chan struct{})
	var runs atomic.Int32
	tk := NewTicker(time.Hour, func(ctx context.Context) {
		runs.Add(1)
		<-release
	})
	defer tk.Stop()

	ctx := context.Background()
	require.True(t, tk.Fire(ctx))
	assert.False(t, tk.Fire(ctx))
	assert.False(t, tk.Fire(ctx))
	assert.Equal(t, int64(2), tk.Skipped())

	close(release)
	require.Eventually(t, func() bool { return tk.Fire(ctx) }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestTicker_Periodic(t *testing.T) {
	var runs atomic.Int32
	tk := NewTicker(10*time.Millisecond, func(ctx context.Context) { runs.Add(1) })
	tk.Start(context.Background())

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	tk.Stop()

	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestTicker_StopWaitsForRun(t *testing.T) {
	var finished atomic.Bool
	tk := NewTicker(time.Hour, func(ctx context.Context) {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})
	tk.Start(context.Background())
	require.True(t, tk.Fire(context.Background()))

	tk.Stop()
	assert.True(t, finished.Load())
	tk.Stop()
}
