// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ports

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKiller struct {
	mu     sync.Mutex
	killed []int
	onKill func(pid int)
}

func (k *fakeKiller) KillTree(_ context.Context, pid int) error {
	k.mu.Lock()
	k.killed = append(k.killed, pid)
	k.mu.Unlock()
	if k.onKill != nil {
		k.onKill(pid)
	}
	return nil
}

func (k *fakeKiller) Killed() []int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]int(nil), k.killed...)
}

type fakeFinder struct {
	name string
	pids map[int][]int
	err  error
}

func (f *fakeFinder) Name() string { return f.name }

func (f *fakeFinder) Find(_ context.Context, port int) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pids[port], nil
}

// fakePorts tracks which ports are held.
type fakePorts struct {
	mu   sync.Mutex
	held map[int]bool
}

func (p *fakePorts) probe(port int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.held[port]
}

func (p *fakePorts) release(port int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.held, port)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestEnsureAvailable_FastPath(t *testing.T) {
	killer := &fakeKiller{}
	r := NewReconciler(killer, WithDelays(time.Hour, time.Hour), WithFinders())

	port := freePort(t)
	start := time.Now()
	require.NoError(t, r.EnsureAvailable(context.Background(), []int{port}))
	assert.Less(t, time.Since(start), time.Second, "fast path must not sleep")
	assert.Empty(t, killer.Killed())

	// The port is usable right afterwards.
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	require.NoError(t, err)
	ln.Close()
}

func TestEnsureAvailable_KillsHolders(t *testing.T) {
	ports := &fakePorts{held: map[int]bool{3000: true, 4000: true}}
	owners := map[int]int{111: 3000, 222: 4000}
	killer := &fakeKiller{onKill: func(pid int) { ports.release(owners[pid]) }}

	r := NewReconciler(killer,
		WithFinders(
			&fakeFinder{name: "a", pids: map[int][]int{3000: {111}}},
			&fakeFinder{name: "b", pids: map[int][]int{3000: {111}, 4000: {222}}},
		),
		WithDelays(time.Millisecond, time.Millisecond),
		WithProbe(ports.probe),
	)

	require.NoError(t, r.EnsureAvailable(context.Background(), []int{3000, 4000, 5000}))
	assert.ElementsMatch(t, []int{111, 222}, killer.Killed(), "duplicates across finders are killed once")
}

func TestEnsureAvailable_NeverKillsSelf(t *testing.T) {
	ports := &fakePorts{held: map[int]bool{3000: true}}
	killer := &fakeKiller{}
	self := os.Getpid()

	r := NewReconciler(killer,
		WithFinders(&fakeFinder{name: "a", pids: map[int][]int{3000: {self}}}),
		WithAttempts(2),
		WithDelays(time.Millisecond, time.Millisecond),
		WithProbe(ports.probe),
	)

	err := r.EnsureAvailable(context.Background(), []int{3000})
	require.Error(t, err)
	assert.Empty(t, killer.Killed())
}

func TestEnsureAvailable_Exhausted(t *testing.T) {
	ports := &fakePorts{held: map[int]bool{3000: true, 4000: true}}
	killer := &fakeKiller{}

	r := NewReconciler(killer,
		WithFinders(&fakeFinder{name: "broken", err: errors.New("boom")}),
		WithAttempts(3),
		WithDelays(time.Millisecond, time.Millisecond),
		WithProbe(ports.probe),
	)

	err := r.EnsureAvailable(context.Background(), []int{3000, 4000})
	var busy *BusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, []int{3000, 4000}, busy.Ports)
	assert.Equal(t, "ports still busy: 3000, 4000", busy.Error())
}

func TestEnsureAvailable_ContextCanceled(t *testing.T) {
	ports := &fakePorts{held: map[int]bool{3000: true}}
	r := NewReconciler(&fakeKiller{},
		WithFinders(),
		WithDelays(time.Hour, time.Hour),
		WithProbe(ports.probe),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.EnsureAvailable(ctx, []int{3000}), context.Canceled)
}

func TestCanBind(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port

	assert.False(t, CanBind(port))
	ln.Close()
	assert.True(t, CanBind(port))
}

func TestSocketFinder_FindsOwnListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	pids, err := SocketFinder{}.Find(context.Background(), port)
	if err != nil || len(pids) == 0 {
		t.Skipf("socket table unavailable: %v", err)
	}
	assert.Contains(t, pids, os.Getpid())

	// findAll filters the caller out.
	assert.NotContains(t, findAll(context.Background(), []Finder{SocketFinder{}}, port, os.Getpid()), os.Getpid())
}

func TestParsePIDs(t *testing.T) {
	assert.Equal(t, []int{12, 34}, parsePIDs("12\n34\n"))
	assert.Empty(t, parsePIDs(""))
	assert.Equal(t, []int{5}, parsePIDs("junk\n5\n-1\n"))
}
