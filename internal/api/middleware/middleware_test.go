// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestLogging_PassesResponseThrough(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
		body   string
	}{
		{"read", "GET", http.StatusOK, `{"data":[]}`},
		{"write", "POST", http.StatusOK, `{"data":{}}`},
		{"not found", "GET", http.StatusNotFound, ""},
		{"server error", "POST", http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			rec := run(h, tt.method, "/api/v1/projects")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Len(t, rec.Header().Get(RequestIDHeader), 8)
		})
	}
}

func TestLogging_UniqueRequestIDs(t *testing.T) {
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	a := run(h, "GET", "/api/v1/profiles").Header().Get(RequestIDHeader)
	b := run(h, "GET", "/api/v1/profiles").Header().Get(RequestIDHeader)
	assert.NotEqual(t, a, b)
}

func TestLogging_PassesHijacker(t *testing.T) {
	var hijackable bool
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hijackable = w.(http.Hijacker)
	}))

	run(h, "GET", "/api/v1/events/ws")
	assert.True(t, hijackable)
}

func TestStatusRecorder(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	assert.Zero(t, rec.status)

	n, err := rec.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, rec.bytes)
	assert.Equal(t, http.StatusOK, rec.status, "an implicit header counts as 200")

	_, _, err = rec.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}

func TestRecovery_WritesEnvelope(t *testing.T) {
	h := Logging(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map")
	})))

	rec := run(h, "POST", "/api/v1/projects/main/start")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
}

func TestRecovery_AfterWrite(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		panic("late")
	}))

	rec := run(h, "GET", "/api/v1/projects")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestRecovery_NoPanic(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rec := run(h, "GET", "/api/v1/projects")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
