// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func linesOf(texts ...string) []Line {
	out := make([]Line, len(texts))
	for i, t := range texts {
		out[i] = Line{Text: t}
	}
	return out
}

func TestSearch_Matches(t *testing.T) {
	s := NewSearch(linesOf("foo", "bar foo", "baz"), "foo")
	assert.Equal(t, []int{0, 1}, s.Matches())

	s.SetQuery(linesOf("foo", "bar foo", "baz"), "")
	assert.Empty(t, s.Matches())
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	s := NewSearch(linesOf("ERROR: boom", "ok", "an error occurred"), "Error")
	assert.Equal(t, []int{0, 2}, s.Matches())
	assert.Equal(t, "Error", s.Query())
}

func TestSearch_Cursor(t *testing.T) {
	s := NewSearch(linesOf("a", "x", "a", "x", "a"), "a")

	idx, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	s.Next()
	idx, _ = s.Current()
	assert.Equal(t, 2, idx)

	s.Next()
	s.Next()
	idx, _ = s.Current()
	assert.Equal(t, 0, idx, "next wraps to the first match")

	s.Prev()
	idx, _ = s.Current()
	assert.Equal(t, 4, idx, "prev wraps to the last match")
}

func TestSearch_NoMatchesCursorIsInert(t *testing.T) {
	s := NewSearch(linesOf("a"), "zzz")
	s.Next()
	s.Prev()
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestSearch_ScrollOffset(t *testing.T) {
	texts := make([]string, 100)
	for i := range texts {
		texts[i] = "line"
	}
	texts[50] = "needle"
	texts[2] = "needle"
	texts[98] = "needle"
	lines := linesOf(texts...)

	s := NewSearch(lines, "needle")
	assert.Equal(t, 0, s.ScrollOffset(10, 100), "clamped at the top")

	s.Next()
	assert.Equal(t, 45, s.ScrollOffset(10, 100), "match centered")

	s.Next()
	assert.Equal(t, 90, s.ScrollOffset(10, 100), "clamped at the bottom")

	empty := NewSearch(lines, "")
	assert.Equal(t, 90, empty.ScrollOffset(10, 100))
	assert.Equal(t, 0, empty.ScrollOffset(10, 5))
}
