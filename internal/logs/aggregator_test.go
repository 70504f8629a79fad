// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T, capacity int) (*Aggregator, string) {
	t.Helper()
	dir := t.TempDir()
	a := NewAggregator(dir, capacity)
	t.Cleanup(a.Close)
	return a, dir
}

func readFile(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestAggregator_AddLine(t *testing.T) {
	a, dir := newTestAggregator(t, 2)

	assert.False(t, a.AddLine("main", "api", "one"))
	assert.False(t, a.AddLine("main", "api", "two"))
	assert.True(t, a.AddLine("main", "api", "three"))
	assert.False(t, a.AddLine("main", "web", "other"))

	assert.Equal(t, []string{"two", "three"}, textLines(a.Lines("main", "api")))
	assert.Equal(t, []string{"other"}, textLines(a.Lines("main", "web")))

	a.Flush()
	path := filepath.Join(dir, "main", "api.log")
	assert.Equal(t, path, a.Path("main", "api"))

	// The file keeps every line, each with a time prefix.
	lines := readFile(t, path)
	require.Len(t, lines, 3)
	for i, want := range []string{"one", "two", "three"} {
		assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] `+want+`$`, lines[i])
	}
}

func TestAggregator_Subscribe(t *testing.T) {
	a, _ := newTestAggregator(t, 1)

	events, cancel := a.Subscribe(10)
	a.AddLine("main", "api", "first")
	a.AddLine("main", "api", "second")

	ev := <-events
	assert.Equal(t, "main", ev.Project)
	assert.Equal(t, "api", ev.App)
	assert.Equal(t, "first", ev.Line.Text)
	assert.False(t, ev.DidEvict)

	ev = <-events
	assert.Equal(t, "second", ev.Line.Text)
	assert.True(t, ev.DidEvict)

	cancel()
	_, open := <-events
	assert.False(t, open, "cancel closes the channel")
	cancel() // idempotent

	// Adding after unsubscribe must not panic.
	a.AddLine("main", "api", "third")
}

func TestAggregator_SlowSubscriberDrops(t *testing.T) {
	a, _ := newTestAggregator(t, 100)

	events, cancel := a.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			a.AddLine("main", "api", fmt.Sprint(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AddLine blocked on a full subscriber")
	}
	assert.Equal(t, "0", (<-events).Line.Text)
	assert.Equal(t, 50, len(a.Lines("main", "api")))
}

func TestAggregator_ClearKeepsFile(t *testing.T) {
	a, _ := newTestAggregator(t, 10)
	a.AddLine("main", "api", "kept on disk")
	a.Clear("main", "api")

	assert.Empty(t, a.Lines("main", "api"))
	a.Flush()
	assert.Len(t, readFile(t, a.Path("main", "api")), 1)
}

func TestAggregator_LoadFromFile(t *testing.T) {
	a, dir := newTestAggregator(t, 3)

	path := filepath.Join(dir, "main", "api.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	content := "[08:00:00] old\n\n[09:00:01] a\n[09:00:02] b\nno prefix\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, a.LoadFromFile("main", "api"))
	lines := a.Lines("main", "api")
	assert.Equal(t, []string{"a", "b", "no prefix"}, textLines(lines))
	assert.Equal(t, 9, lines[0].Time.Hour())
	assert.Equal(t, 1, lines[0].Time.Second())

	// A missing file leaves an empty buffer.
	require.NoError(t, a.LoadFromFile("main", "missing"))
	assert.Empty(t, a.Lines("main", "missing"))
}

func TestAggregator_TruncateFile(t *testing.T) {
	a, _ := newTestAggregator(t, 3)

	for i := 0; i < 10; i++ {
		a.AddLine("main", "api", fmt.Sprint("line ", i))
	}
	require.NoError(t, a.TruncateFile("main", "api"))

	lines := readFile(t, a.Path("main", "api"))
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "line 7"))
	assert.True(t, strings.HasSuffix(lines[2], "line 9"))

	// Appends continue on the new file.
	a.AddLine("main", "api", "line 10")
	a.Flush()
	lines = readFile(t, a.Path("main", "api"))
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[3], "line 10"))

	// The file still holds at least what the buffer holds after a load.
	require.NoError(t, a.LoadFromFile("main", "api"))
	assert.Equal(t, []string{"line 8", "line 9", "line 10"}, textLines(a.Lines("main", "api")))
}

func TestAggregator_TruncateAll(t *testing.T) {
	a, dir := newTestAggregator(t, 2)

	// A file left by an earlier run, never buffered in this one.
	stale := filepath.Join(dir, "feature", "web.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("[01:00:00] a\n[01:00:01] b\n[01:00:02] c\n"), 0644))

	for i := 0; i < 5; i++ {
		a.AddLine("main", "api", fmt.Sprint(i))
	}
	require.NoError(t, a.TruncateAll())

	assert.Len(t, readFile(t, a.Path("main", "api")), 2)
	assert.Equal(t, []string{"[01:00:01] b", "[01:00:02] c"}, readFile(t, stale))
}

func TestAggregator_TruncateShortFileIsNoop(t *testing.T) {
	a, _ := newTestAggregator(t, 10)
	a.AddLine("main", "api", "only")
	require.NoError(t, a.TruncateFile("main", "api"))
	require.NoError(t, a.TruncateFile("main", "never-written"))
	assert.Len(t, readFile(t, a.Path("main", "api")), 1)
}

func TestAggregator_Search(t *testing.T) {
	a, _ := newTestAggregator(t, 10)
	for _, s := range []string{"foo", "bar foo", "baz"} {
		a.AddLine("main", "api", s)
	}
	assert.Equal(t, []int{0, 1}, a.Search("main", "api", "FOO").Matches())
}

func TestAggregator_CloseIsIdempotent(t *testing.T) {
	a := NewAggregator(t.TempDir(), 10)
	events, _ := a.Subscribe(1)
	a.Close()
	a.Close()

	_, open := <-events
	assert.False(t, open)
	// Late lines are buffered but not written.
	a.AddLine("main", "api", "late")
	assert.Len(t, a.Lines("main", "api"), 1)
}
