// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	relativePattern = regexp.MustCompile(`^(\d+)([smhdw])$`)
	clock12Pattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})(am|pm)$`)
	clock24Pattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ParseSince turns a --since value into an absolute time relative to now.
// Supported formats:
//   - Relative: 30s, 15m, 1h, 2d, 1w (ago)
//   - Clock time: 6:30am, 14:00 (today)
//   - Timestamp: 2026-10-16T09:00:00Z, 2026-10-16
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}

	if t, ok := parseClockTime(s, now); ok {
		return t, nil
	}

	matches := relativePattern.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("invalid time: %q (use e.g. 30m, 2h, 6:30am, or a timestamp)", s)
	}

	value, _ := strconv.Atoi(matches[1])
	var unit time.Duration
	switch matches[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	case "w":
		unit = 7 * 24 * time.Hour
	}
	return now.Add(-time.Duration(value) * unit), nil
}

// parseClockTime parses "6:00am", "6:30pm", "14:00" as a time on now's date.
func parseClockTime(s string, now time.Time) (time.Time, bool) {
	s = strings.ToLower(s)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if m := clock12Pattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			return time.Time{}, false
		}
		hour %= 12
		if m[3] == "pm" {
			hour += 12
		}
		return today.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), true
	}

	if m := clock24Pattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}
		return today.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), true
	}

	return time.Time{}, false
}
