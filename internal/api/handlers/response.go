// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/wingedpig/paddock/internal/service"
)

// Response is the standard API response wrapper.
type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
	Meta  *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo contains response metadata.
type MetaInfo struct {
	Timestamp time.Time `json:"timestamp"`
}

// Common error codes
const (
	ErrNotFound        = "NOT_FOUND"
	ErrBadRequest      = "BAD_REQUEST"
	ErrInternalError   = "INTERNAL_ERROR"
	ErrSupervisorError = "SUPERVISOR_ERROR"
)

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Response{
		Data: data,
		Meta: &MetaInfo{Timestamp: time.Now()},
	})
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Response{
		Error: &ErrorInfo{Code: code, Message: message},
		Meta:  &MetaInfo{Timestamp: time.Now()},
	})
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeSupervisorError maps supervisor errors onto HTTP statuses.
func writeSupervisorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownProject), errors.Is(err, service.ErrUnknownApp):
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
	case errors.Is(err, service.ErrUnknownProfile), errors.Is(err, service.ErrProfileMismatch):
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, ErrSupervisorError, err.Error())
	}
}

// intParam parses a positive integer query parameter, returning def when
// missing or invalid.
func intParam(r *http.Request, name string, def int) int {
	if s := r.URL.Query().Get(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
