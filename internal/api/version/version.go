// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package version resolves the date-based API version a client asks for.
//
// Clients send the version they were built against in the Paddock-Version
// header. The daemon serves the newest version it knows that is not newer
// than the request, and echoes it. A daemon left running across an
// upgrade rejects clients newer than itself.
package version

import (
	"errors"
	"fmt"
	"time"
)

// Header is the HTTP header carrying the API version.
const Header = "Paddock-Version"

const (
	// Version20261016 is the initial API version.
	Version20261016 = "2026-10-16"
)

// Supported lists the versions this daemon serves, oldest first.
var Supported = []string{Version20261016}

// Latest returns the newest supported version.
func Latest() string {
	return Supported[len(Supported)-1]
}

var (
	// ErrMalformed is returned for versions that aren't YYYY-MM-DD dates.
	ErrMalformed = errors.New("malformed API version")
	// ErrUnsupported is returned for versions outside the supported range.
	ErrUnsupported = errors.New("unsupported API version")
)

// Resolve maps a requested version onto a supported one. An empty request
// gets the latest.
func Resolve(requested string) (string, error) {
	if requested == "" {
		return Latest(), nil
	}
	if _, err := time.Parse(time.DateOnly, requested); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformed, requested)
	}
	if requested > Latest() {
		return "", fmt.Errorf("%w: %s is newer than this daemon (%s); restart it", ErrUnsupported, requested, Latest())
	}
	// Dates in this layout order lexically.
	for i := len(Supported) - 1; i >= 0; i-- {
		if Supported[i] <= requested {
			return Supported[i], nil
		}
	}
	return "", fmt.Errorf("%w: %s predates %s", ErrUnsupported, requested, Supported[0])
}
