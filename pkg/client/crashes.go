// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// CrashClient reads and removes crash reports.
//
// Access this client through [Client.Crashes]:
//
//	crash, err := c.Crashes.Newest(ctx)
type CrashClient struct {
	c *Client
}

func decodeCrash(data json.RawMessage, err error) (*Crash, error) {
	if err != nil {
		return nil, err
	}
	var crash Crash
	if err := json.Unmarshal(data, &crash); err != nil {
		return nil, fmt.Errorf("failed to parse crash: %w", err)
	}
	return &crash, nil
}

// List returns every stored crash, newest first.
func (cc *CrashClient) List(ctx context.Context) ([]CrashSummary, error) {
	data, err := cc.c.get(ctx, "/api/v1/crashes")
	if err != nil {
		return nil, err
	}
	var crashes []CrashSummary
	if err := json.Unmarshal(data, &crashes); err != nil {
		return nil, fmt.Errorf("failed to parse crashes: %w", err)
	}
	return crashes, nil
}

// Get returns a crash report by ID.
func (cc *CrashClient) Get(ctx context.Context, id string) (*Crash, error) {
	return decodeCrash(cc.c.get(ctx, "/api/v1/crashes/"+url.PathEscape(id)))
}

// Newest returns the most recent crash report. It returns an [*APIError]
// with code NOT_FOUND when none has been recorded.
func (cc *CrashClient) Newest(ctx context.Context) (*Crash, error) {
	return decodeCrash(cc.c.get(ctx, "/api/v1/crashes/newest"))
}

// Delete removes a crash report.
func (cc *CrashClient) Delete(ctx context.Context, id string) error {
	_, err := cc.c.delete(ctx, "/api/v1/crashes/"+url.PathEscape(id))
	return err
}

// Clear removes every crash report.
func (cc *CrashClient) Clear(ctx context.Context) error {
	_, err := cc.c.delete(ctx, "/api/v1/crashes")
	return err
}
