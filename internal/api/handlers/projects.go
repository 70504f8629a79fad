// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wingedpig/paddock/internal/config"
	"github.com/wingedpig/paddock/internal/service"
)

// Supervisor is the subset of service.Supervisor used by the API.
type Supervisor interface {
	Config() *config.Config
	Snapshot() []service.ProjectStatus
	ProjectSnapshot(alias string) (service.ProjectStatus, error)
	StartProject(ctx context.Context, alias, profile string) error
	StopProject(ctx context.Context, alias string) error
	RestartProject(ctx context.Context, alias, profile string) error
	StopAllProjects(ctx context.Context) error
	StartApp(ctx context.Context, alias, app, profile string) error
	StopApp(ctx context.Context, alias, app string) error
	RestartApp(ctx context.Context, alias, app string) error
	DefaultProfile() string
	SetDefaultProfile(profile string) error
}

// ProjectHandler handles project and app lifecycle requests.
type ProjectHandler struct {
	sup Supervisor
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(sup Supervisor) *ProjectHandler {
	return &ProjectHandler{sup: sup}
}

// opContext detaches lifecycle operations from the request; a client that
// disconnects must not leave a project half started.
func opContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// List returns every configured project.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.sup.Snapshot())
}

// Get returns a single project.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	ps, err := h.sup.ProjectSnapshot(mux.Vars(r)["alias"])
	if err != nil {
		writeSupervisorError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ps)
}

// Start starts every app of a project.
func (h *ProjectHandler) Start(w http.ResponseWriter, r *http.Request) {
	alias := mux.Vars(r)["alias"]
	if err := h.sup.StartProject(opContext(r), alias, r.URL.Query().Get("profile")); err != nil {
		writeSupervisorError(w, err)
		return
	}
	h.writeProject(w, alias)
}

// Stop stops every app of a project.
func (h *ProjectHandler) Stop(w http.ResponseWriter, r *http.Request) {
	alias := mux.Vars(r)["alias"]
	if err := h.sup.StopProject(opContext(r), alias); err != nil {
		writeSupervisorError(w, err)
		return
	}
	h.writeProject(w, alias)
}

// Restart stops and starts a project.
func (h *ProjectHandler) Restart(w http.ResponseWriter, r *http.Request) {
	alias := mux.Vars(r)["alias"]
	if err := h.sup.RestartProject(opContext(r), alias, r.URL.Query().Get("profile")); err != nil {
		writeSupervisorError(w, err)
		return
	}
	h.writeProject(w, alias)
}

// StopAll stops every project.
func (h *ProjectHandler) StopAll(w http.ResponseWriter, r *http.Request) {
	if err := h.sup.StopAllProjects(opContext(r)); err != nil {
		writeSupervisorError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.sup.Snapshot())
}

// StartApp starts one app.
func (h *ProjectHandler) StartApp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.sup.StartApp(opContext(r), vars["alias"], vars["app"], r.URL.Query().Get("profile")); err != nil {
		writeSupervisorError(w, err)
		return
	}
	h.writeProject(w, vars["alias"])
}

// StopApp stops one app.
func (h *ProjectHandler) StopApp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.sup.StopApp(opContext(r), vars["alias"], vars["app"]); err != nil {
		writeSupervisorError(w, err)
		return
	}
	h.writeProject(w, vars["alias"])
}

// RestartApp restarts one app.
func (h *ProjectHandler) RestartApp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.sup.RestartApp(opContext(r), vars["alias"], vars["app"]); err != nil {
		writeSupervisorError(w, err)
		return
	}
	h.writeProject(w, vars["alias"])
}

// writeProject responds with the project's snapshot. Stop accepts aliases
// that are no longer configured, so those get a bare acknowledgement.
func (h *ProjectHandler) writeProject(w http.ResponseWriter, alias string) {
	ps, err := h.sup.ProjectSnapshot(alias)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]string{"alias": alias})
		return
	}
	WriteJSON(w, http.StatusOK, ps)
}

// ProfilesResponse lists the runtime profiles.
type ProfilesResponse struct {
	Profiles []string `json:"profiles"`
	Default  string   `json:"default"`
}

// Profiles returns the configured runtime profiles and the persisted default.
func (h *ProjectHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, ProfilesResponse{
		Profiles: h.sup.Config().Profiles,
		Default:  h.sup.DefaultProfile(),
	})
}

// SetDefaultProfile persists the profile used when none is given.
func (h *ProjectHandler) SetDefaultProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.sup.SetDefaultProfile(mux.Vars(r)["profile"]); err != nil {
		writeSupervisorError(w, err)
		return
	}
	h.Profiles(w, r)
}
