// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ProjectClient starts, stops, and inspects projects and their apps.
//
// Access this client through [Client.Projects]:
//
//	projects, err := c.Projects.List(ctx)
type ProjectClient struct {
	c *Client
}

func projectPath(alias string) string {
	return "/api/v1/projects/" + url.PathEscape(alias)
}

func appPath(alias, app string) string {
	return projectPath(alias) + "/apps/" + url.PathEscape(app)
}

func withProfile(path, profile string) string {
	if profile == "" {
		return path
	}
	return path + "?" + url.Values{"profile": {profile}}.Encode()
}

func decodeProject(data json.RawMessage, err error) (*Project, error) {
	if err != nil {
		return nil, err
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	return &p, nil
}

func decodeProjects(data json.RawMessage, err error) ([]Project, error) {
	if err != nil {
		return nil, err
	}
	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to parse projects: %w", err)
	}
	return projects, nil
}

// List returns every configured project in config order.
func (p *ProjectClient) List(ctx context.Context) ([]Project, error) {
	return decodeProjects(p.c.get(ctx, "/api/v1/projects"))
}

// Get returns one project.
func (p *ProjectClient) Get(ctx context.Context, alias string) (*Project, error) {
	return decodeProject(p.c.get(ctx, projectPath(alias)))
}

// Start starts every app of the project. An empty profile uses the
// daemon's default.
func (p *ProjectClient) Start(ctx context.Context, alias, profile string) (*Project, error) {
	return decodeProject(p.c.post(ctx, withProfile(projectPath(alias)+"/start", profile)))
}

// Stop stops every app of the project. The returned project is nil when
// the alias is no longer configured.
func (p *ProjectClient) Stop(ctx context.Context, alias string) (*Project, error) {
	proj, err := decodeProject(p.c.post(ctx, projectPath(alias)+"/stop"))
	if err != nil {
		return nil, err
	}
	if proj.Apps == nil {
		return nil, nil
	}
	return proj, nil
}

// Restart stops and starts the project. An empty profile keeps the
// project's current profile.
func (p *ProjectClient) Restart(ctx context.Context, alias, profile string) (*Project, error) {
	return decodeProject(p.c.post(ctx, withProfile(projectPath(alias)+"/restart", profile)))
}

// StopAll stops every project.
func (p *ProjectClient) StopAll(ctx context.Context) ([]Project, error) {
	return decodeProjects(p.c.post(ctx, "/api/v1/stop-all"))
}

// StartApp starts one app of the project.
func (p *ProjectClient) StartApp(ctx context.Context, alias, app, profile string) (*Project, error) {
	return decodeProject(p.c.post(ctx, withProfile(appPath(alias, app)+"/start", profile)))
}

// StopApp stops one app of the project.
func (p *ProjectClient) StopApp(ctx context.Context, alias, app string) (*Project, error) {
	return decodeProject(p.c.post(ctx, appPath(alias, app)+"/stop"))
}

// RestartApp restarts one app, keeping the project's profile.
func (p *ProjectClient) RestartApp(ctx context.Context, alias, app string) (*Project, error) {
	return decodeProject(p.c.post(ctx, appPath(alias, app)+"/restart"))
}

// ProfileClient lists runtime profiles and sets the default.
type ProfileClient struct {
	c *Client
}

func decodeProfiles(data json.RawMessage, err error) (*Profiles, error) {
	if err != nil {
		return nil, err
	}
	var p Profiles
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return &p, nil
}

// List returns the configured profiles and the current default.
func (p *ProfileClient) List(ctx context.Context) (*Profiles, error) {
	return decodeProfiles(p.c.get(ctx, "/api/v1/profiles"))
}

// SetDefault persists the profile used when none is given.
func (p *ProfileClient) SetDefault(ctx context.Context, profile string) (*Profiles, error) {
	return decodeProfiles(p.c.put(ctx, "/api/v1/profiles/default/"+url.PathEscape(profile)))
}
