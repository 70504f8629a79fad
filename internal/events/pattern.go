// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"strings"
)

// ErrInvalidPattern is returned for patterns Match can never satisfy.
var ErrInvalidPattern = errors.New("invalid event pattern")

// Match reports whether eventType matches pattern.
// Patterns support wildcards:
//   - "app.*" matches "app.starting", "app.crashed", etc.
//   - "*.stopped" matches "app.stopped" and "project.stopped"
//   - "*" matches everything
func Match(eventType, pattern string) bool {
	switch {
	case pattern == "" || eventType == "":
		return false
	case pattern == "*", pattern == eventType:
		return true
	case strings.HasSuffix(pattern, ".*"):
		return strings.HasPrefix(eventType, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(eventType, strings.TrimPrefix(pattern, "*"))
	}
	return false
}

// ValidatePattern rejects empty patterns and wildcards in the middle.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return ErrInvalidPattern
	}
	if pattern == "*" {
		return nil
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(pattern, "*."), ".*")
	if inner == "" || strings.Contains(inner, "*") {
		return ErrInvalidPattern
	}
	return nil
}
