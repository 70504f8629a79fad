// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import "strings"

// Search tracks case-insensitive substring matches over a set of lines and
// a cursor over those matches.
type Search struct {
	query   string
	matches []int
	current int
}

// NewSearch creates a search over lines for query.
func NewSearch(lines []Line, query string) *Search {
	s := &Search{}
	s.SetQuery(lines, query)
	return s
}

// SetQuery recomputes the matches from scratch. An empty query matches nothing.
func (s *Search) SetQuery(lines []Line, query string) {
	s.query = query
	s.matches = nil
	s.current = 0
	if query == "" {
		return
	}

	needle := strings.ToLower(query)
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line.Text), needle) {
			s.matches = append(s.matches, i)
		}
	}
}

// Query returns the active query.
func (s *Search) Query() string {
	return s.query
}

// Matches returns the indices of matching lines in ascending order.
func (s *Search) Matches() []int {
	return s.matches
}

// Current returns the line index under the cursor.
func (s *Search) Current() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	return s.matches[s.current], true
}

// Next advances the cursor, wrapping to the first match.
func (s *Search) Next() {
	if len(s.matches) == 0 {
		return
	}
	s.current = (s.current + 1) % len(s.matches)
}

// Prev moves the cursor back, wrapping to the last match.
func (s *Search) Prev() {
	if len(s.matches) == 0 {
		return
	}
	s.current = (s.current - 1 + len(s.matches)) % len(s.matches)
}

// ScrollOffset returns the first visible line index that centers the current
// match in a viewport of height lines over total lines. Without a match the
// view sticks to the bottom.
func (s *Search) ScrollOffset(height, total int) int {
	maxOffset := total - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	idx, ok := s.Current()
	if !ok {
		return maxOffset
	}
	offset := idx - height/2
	if offset < 0 {
		offset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	return offset
}
