// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/wingedpig/paddock/internal/api/handlers"
)

// Recovery turns a handler panic into an INTERNAL_ERROR envelope. A panic
// after the response has started only gets logged.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := w.(*statusRecorder)
		if !ok {
			rec = &statusRecorder{ResponseWriter: w}
		}
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			log.Error("Handler panic", "method", r.Method, "path", r.URL.Path, "panic", v, "stack", string(debug.Stack()))
			if rec.status == 0 {
				handlers.WriteError(rec, http.StatusInternalServerError, handlers.ErrInternalError, "internal server error")
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
