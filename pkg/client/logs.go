// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
)

// LogClient reads and streams app log buffers.
//
// Access this client through [Client.Logs]:
//
//	logs, err := c.Logs.Get(ctx, "main", "api", &client.LogOptions{Search: "panic"})
type LogClient struct {
	c *Client
}

// LogOptions narrows a log request.
type LogOptions struct {
	// Lines is the maximum number of lines returned, newest last. The daemon
	// defaults to 100.
	Lines int

	// Search keeps only lines containing this text, case-insensitively.
	Search string
}

// Get returns the tail of an app's log buffer.
func (l *LogClient) Get(ctx context.Context, project, app string, opts *LogOptions) (*Logs, error) {
	path := appPath(project, app) + "/logs"
	if opts != nil {
		params := url.Values{}
		if opts.Lines > 0 {
			params.Set("lines", strconv.Itoa(opts.Lines))
		}
		if opts.Search != "" {
			params.Set("search", opts.Search)
		}
		if len(params) > 0 {
			path += "?" + params.Encode()
		}
	}

	data, err := l.c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var logs Logs
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("failed to parse logs: %w", err)
	}
	return &logs, nil
}

// Stream calls fn for every new log line until ctx is cancelled or the
// connection drops. Empty project or app match everything.
func (l *LogClient) Stream(ctx context.Context, project, app string, fn func(LogEvent)) error {
	params := url.Values{}
	if project != "" {
		params.Set("project", project)
	}
	if app != "" {
		params.Set("app", app)
	}
	path := "/api/v1/logs/ws"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return stream(ctx, l.c, path, func(data []byte) error {
		var ev LogEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to parse log event: %w", err)
		}
		fn(ev)
		return nil
	})
}

// stream reads JSON messages from a websocket until ctx is done.
func stream(ctx context.Context, c *Client, path string, handle func([]byte) error) error {
	header := http.Header{VersionHeader: {c.version}}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL(path), header)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := handle(data); err != nil {
			return err
		}
	}
}
