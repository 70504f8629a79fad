// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// EventClient reads and streams lifecycle events.
//
// Access this client through [Client.Events]:
//
//	events, err := c.Events.List(ctx, &client.ListOptions{Limit: 50})
type EventClient struct {
	c *Client
}

// ListOptions configures event listing.
type ListOptions struct {
	// Limit is the maximum number of events to return, most recent kept.
	Limit int

	// Types filters to these event types; wildcards like "app.*" work.
	Types []string

	// Project filters to events from this project.
	Project string

	// Since filters to events after this time.
	Since time.Time
}

// List returns recent events, oldest first.
func (e *EventClient) List(ctx context.Context, opts *ListOptions) ([]Event, error) {
	path := "/api/v1/events"

	if opts != nil {
		params := url.Values{}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		for _, t := range opts.Types {
			params.Add("type", t)
		}
		if opts.Project != "" {
			params.Set("project", opts.Project)
		}
		if !opts.Since.IsZero() {
			params.Set("since", opts.Since.Format(time.RFC3339))
		}
		if len(params) > 0 {
			path += "?" + params.Encode()
		}
	}

	data, err := e.c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse events: %w", err)
	}
	return events, nil
}

// Watch calls fn for every event matching pattern until ctx is cancelled
// or the connection drops. An empty pattern matches everything.
func (e *EventClient) Watch(ctx context.Context, pattern string, fn func(Event)) error {
	path := "/api/v1/events/ws"
	if pattern != "" {
		path += "?" + url.Values{"pattern": {pattern}}.Encode()
	}
	return stream(ctx, e.c, path, func(data []byte) error {
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to parse event: %w", err)
		}
		fn(ev)
		return nil
	})
}
