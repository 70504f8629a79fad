// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestCrashClient_List(t *testing.T) {
	var method, uri string
	summaries := []CrashSummary{
		{ID: "20261016-091500.000-main-api", Project: "main", App: "api", ExitCode: 2},
		{ID: "20261016-090000.000-alt1-web", Project: "alt1", App: "web", Error: "exec: not found"},
	}
	server := mockServer(t, recordingHandler(&method, &uri, summaries))
	defer server.Close()

	got, err := New(server.URL).Crashes.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if method != http.MethodGet || uri != "/api/v1/crashes" {
		t.Errorf("request = %s %s", method, uri)
	}
	if len(got) != 2 {
		t.Fatalf("got %d crashes, want 2", len(got))
	}
	if got[0].ExitCode != 2 || got[1].Error != "exec: not found" {
		t.Errorf("unexpected summaries: %+v", got)
	}
}

func TestCrashClient_Get(t *testing.T) {
	var method, uri string
	ts := time.Date(2026, 10, 16, 9, 15, 0, 0, time.UTC)
	crash := Crash{
		Version:   "1.0",
		ID:        "20261016-091500.000-main-api",
		Project:   "main",
		App:       "api",
		Timestamp: ts,
		PID:       4242,
		ExitCode:  1,
		Lines:     []LogLine{{Time: ts, Text: "panic: nil map"}},
		Dropped:   12,
	}
	server := mockServer(t, recordingHandler(&method, &uri, crash))
	defer server.Close()

	got, err := New(server.URL).Crashes.Get(context.Background(), crash.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if uri != "/api/v1/crashes/20261016-091500.000-main-api" {
		t.Errorf("uri = %s", uri)
	}
	if got.PID != 4242 || got.Dropped != 12 {
		t.Errorf("got %+v", got)
	}
	if len(got.Lines) != 1 || got.Lines[0].Text != "panic: nil map" {
		t.Errorf("lines = %+v", got.Lines)
	}
}

func TestCrashClient_NewestNone(t *testing.T) {
	server := mockServer(t, apiErrorHandler("NOT_FOUND", "no crashes recorded", http.StatusNotFound))
	defer server.Close()

	_, err := New(server.URL).Crashes.Newest(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.NotFound() {
		t.Fatalf("expected NOT_FOUND APIError, got %v", err)
	}
}

func TestCrashClient_DeleteAndClear(t *testing.T) {
	var method, uri string
	server := mockServer(t, recordingHandler(&method, &uri, map[string]string{"deleted": "x"}))
	defer server.Close()
	c := New(server.URL)

	if err := c.Crashes.Delete(context.Background(), "20261016-091500.000-main-api"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if method != http.MethodDelete || uri != "/api/v1/crashes/20261016-091500.000-main-api" {
		t.Errorf("request = %s %s", method, uri)
	}

	if err := c.Crashes.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if method != http.MethodDelete || uri != "/api/v1/crashes" {
		t.Errorf("request = %s %s", method, uri)
	}
}
