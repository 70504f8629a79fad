// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

// API version constants.
//
// The client sends its version in the Paddock-Version header; the daemon
// echoes the version it answered with.
const (
	// LatestVersion is the current API version.
	LatestVersion = "2026-10-16"

	// Version20261016 is the initial API version.
	Version20261016 = "2026-10-16"
)

// VersionHeader is the HTTP header used to specify the API version.
const VersionHeader = "Paddock-Version"
