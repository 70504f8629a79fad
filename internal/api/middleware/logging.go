// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package middleware holds the HTTP middleware shared by every API route.
package middleware

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// RequestIDHeader carries the ID that ties a response to its log line.
const RequestIDHeader = "X-Request-Id"

// statusRecorder remembers the status and body size of a response. status
// stays zero until the handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// Hijack lets websocket upgrades through the recorder.
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	rec.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Logging tags each request with an ID and logs it once it completes.
// Reads and websocket streams log at debug so status polling stays quiet.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()[:8]
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		logger := log.With("id", id, "method", r.Method, "path", r.URL.Path, "status", rec.status)
		took := time.Since(start).Round(time.Microsecond)
		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.Warn("Request failed", "took", took)
		case rec.status == http.StatusSwitchingProtocols:
			logger.Debug("Stream closed", "took", took)
		case r.Method == http.MethodGet:
			logger.Debug("Request", "bytes", rec.bytes, "took", took)
		default:
			logger.Info("Request", "took", took)
		}
	})
}
