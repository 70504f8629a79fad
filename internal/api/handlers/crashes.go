// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wingedpig/paddock/internal/crashes"
)

// CrashStore is the crash report storage the handler serves.
type CrashStore interface {
	List() ([]crashes.Summary, error)
	Get(id string) (*crashes.Crash, error)
	Newest() (*crashes.Crash, error)
	Delete(id string) error
	Clear() error
}

// CrashHandler handles crash report API requests.
type CrashHandler struct {
	store CrashStore
}

// NewCrashHandler creates a new crash handler.
func NewCrashHandler(store CrashStore) *CrashHandler {
	return &CrashHandler{store: store}
}

// List returns all crash summaries, newest first.
// GET /api/v1/crashes
func (h *CrashHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.List()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, "failed to list crashes: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, summaries)
}

// Get returns a crash report by ID.
// GET /api/v1/crashes/{id}
func (h *CrashHandler) Get(w http.ResponseWriter, r *http.Request) {
	crash, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeCrashError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, crash)
}

// Newest returns the most recent crash report.
// GET /api/v1/crashes/newest
func (h *CrashHandler) Newest(w http.ResponseWriter, r *http.Request) {
	crash, err := h.store.Newest()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	if crash == nil {
		WriteError(w, http.StatusNotFound, ErrNotFound, "no crashes recorded")
		return
	}
	WriteJSON(w, http.StatusOK, crash)
}

// Delete removes a crash report.
// DELETE /api/v1/crashes/{id}
func (h *CrashHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Delete(id); err != nil {
		writeCrashError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// Clear removes every crash report.
// DELETE /api/v1/crashes
func (h *CrashHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(); err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, "failed to clear crashes: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func writeCrashError(w http.ResponseWriter, err error) {
	if errors.Is(err, crashes.ErrNotFound) {
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
}
