// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"net/http"

	"github.com/wingedpig/paddock/internal/api/handlers"
)

// Middleware resolves the requested version and echoes it in the response.
// Unservable versions get a 400 before reaching the handler.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := Resolve(r.Header.Get(Header))
		if err != nil {
			handlers.WriteError(w, http.StatusBadRequest, handlers.ErrBadRequest, err.Error())
			return
		}
		w.Header().Set(Header, v)
		next.ServeHTTP(w, r)
	})
}
