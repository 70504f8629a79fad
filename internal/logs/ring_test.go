// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textLines(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestRing_FIFOEviction(t *testing.T) {
	r := NewRing(3)

	for i := 0; i < 3; i++ {
		assert.False(t, r.Add(Line{Text: fmt.Sprint(i)}), "no eviction while filling")
	}
	assert.True(t, r.Add(Line{Text: "3"}))
	assert.True(t, r.Add(Line{Text: "4"}))

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"2", "3", "4"}, textLines(r.Lines()))
}

func TestRing_NeverExceedsCapacity(t *testing.T) {
	r := NewRing(10)
	evictions := 0
	for i := 0; i < 1000; i++ {
		if r.Add(Line{Text: fmt.Sprint(i)}) {
			evictions++
		}
		require.LessOrEqual(t, r.Len(), 10)
	}
	assert.Equal(t, 990, evictions)
	assert.Equal(t, "999", r.Lines()[9].Text)
}

func TestRing_Tail(t *testing.T) {
	r := NewRing(5)
	for i := 0; i < 7; i++ {
		r.Add(Line{Text: fmt.Sprint(i)})
	}

	assert.Equal(t, []string{"5", "6"}, textLines(r.Tail(2)))
	assert.Equal(t, []string{"2", "3", "4", "5", "6"}, textLines(r.Tail(100)))
	assert.Len(t, r.Tail(0), 5)
}

func TestRing_ReplaceAndClear(t *testing.T) {
	r := NewRing(3)
	r.Replace([]Line{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}})
	assert.Equal(t, []string{"b", "c", "d"}, textLines(r.Lines()))

	// Buffer is full after the replace, so the next add evicts.
	assert.True(t, r.Add(Line{Text: "e"}))
	assert.Equal(t, []string{"c", "d", "e"}, textLines(r.Lines()))

	r.Replace([]Line{{Text: "x"}})
	assert.False(t, r.Add(Line{Text: "y"}))
	assert.Equal(t, []string{"x", "y"}, textLines(r.Lines()))

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Lines())
}

func TestRing_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewRing(0).Capacity())
}

func TestFormatParseLine(t *testing.T) {
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.Local)
	ts := time.Date(2026, 10, 16, 9, 5, 7, 0, time.Local)

	s := FormatLine(Line{Time: ts, Text: "listening on :3000"})
	assert.Equal(t, "[09:05:07] listening on :3000", s)

	parsed := ParseLine(s, day)
	assert.Equal(t, "listening on :3000", parsed.Text)
	assert.True(t, ts.Equal(parsed.Time))

	raw := ParseLine("no prefix here", day)
	assert.Equal(t, "no prefix here", raw.Text)
	assert.True(t, day.Equal(raw.Time))

	bogus := ParseLine("[xx:yy:zz] text", day)
	assert.Equal(t, "[xx:yy:zz] text", bogus.Text)
}
