// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading for paddock.
package config

import (
	"strconv"
	"time"
)

// Config is the root configuration structure for paddock.
type Config struct {
	Projects      []Project     `json:"projects"`
	Apps          []App         `json:"apps"`
	Profiles      []string      `json:"profiles"`
	PortStride    int           `json:"port_stride"`
	LogBufferSize int           `json:"log_buffer_size"`
	StateFile     string        `json:"state_file"`
	LogDir        string        `json:"log_dir"`
	Server        ServerConfig  `json:"server"`
	Timing        TimingConfig  `json:"timing"`
	Crashes       CrashesConfig `json:"crashes"`
	Logging       LoggingConfig `json:"logging"`
}

// Project is one checkout of the managed codebase.
type Project struct {
	Alias string `json:"alias"`
	Path  string `json:"path"`
	Index int    `json:"index"`
}

// App is one service launched as part of every project.
type App struct {
	Name     string            `json:"name"`
	BasePort int               `json:"base_port"`
	Command  string            `json:"command"`
	Dir      string            `json:"dir"`      // Relative to the project path
	PortEnv  string            `json:"port_env"` // Receives the app's port
	HostEnv  string            `json:"host_env"` // Receives localhost:<port>
	Env      map[string]string `json:"env"`
}

// ServerConfig configures the loopback control API.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// TimingConfig holds the supervisor's polling and delay settings.
type TimingConfig struct {
	ReadinessDelay string `json:"readiness_delay"`
	KillTimeout    string `json:"kill_timeout"`
	KillPoll       string `json:"kill_poll"`
	PortRetries    int    `json:"port_retries"`
	PortRetryDelay string `json:"port_retry_delay"`
	PortSettle     string `json:"port_settle"`
	StatsInterval  string `json:"stats_interval"`
	TruncateEvery  int    `json:"truncate_every"` // In stats ticks
}

// CrashesConfig configures crash report retention.
type CrashesConfig struct {
	Dir      string `json:"dir"`
	MaxAge   string `json:"max_age"`
	MaxCount int    `json:"max_count"`
	Lines    int    `json:"lines"` // Output lines kept per report
}

// LoggingConfig configures paddock's own log output.
type LoggingConfig struct {
	Level string `json:"level"`
}

// Port returns the concrete port for app in project.
func (c *Config) Port(app App, project Project) int {
	return app.BasePort + project.Index*c.PortStride
}

// ProjectPorts returns the ports of every app in project, in app order.
func (c *Config) ProjectPorts(project Project) []int {
	ports := make([]int, 0, len(c.Apps))
	for _, app := range c.Apps {
		ports = append(ports, c.Port(app, project))
	}
	return ports
}

// FindProject returns the project with the given alias.
func (c *Config) FindProject(alias string) (Project, bool) {
	for _, p := range c.Projects {
		if p.Alias == alias {
			return p, true
		}
	}
	return Project{}, false
}

// FindApp returns the app with the given name.
func (c *Config) FindApp(name string) (App, bool) {
	for _, a := range c.Apps {
		if a.Name == name {
			return a, true
		}
	}
	return App{}, false
}

// DefaultProfile returns the first configured runtime profile.
func (c *Config) DefaultProfile() string {
	if len(c.Profiles) == 0 {
		return "dev"
	}
	return c.Profiles[0]
}

// NextProfile returns the profile after current, wrapping around.
// Unknown profiles cycle back to the default.
func (c *Config) NextProfile(current string) string {
	for i, p := range c.Profiles {
		if p == current {
			return c.Profiles[(i+1)%len(c.Profiles)]
		}
	}
	return c.DefaultProfile()
}

// HasProfile reports whether name is a configured profile.
func (c *Config) HasProfile(name string) bool {
	for _, p := range c.Profiles {
		if p == name {
			return true
		}
	}
	return false
}

// LaunchEnv returns the service-discovery variables for project: every app's
// port and host variables, so each app can reach its siblings in the same project.
func (c *Config) LaunchEnv(project Project) map[string]string {
	env := make(map[string]string, len(c.Apps)*2)
	for _, app := range c.Apps {
		port := c.Port(app, project)
		if app.PortEnv != "" {
			env[app.PortEnv] = strconv.Itoa(port)
		}
		if app.HostEnv != "" {
			env[app.HostEnv] = "localhost:" + strconv.Itoa(port)
		}
	}
	return env
}

// Durations returns the parsed timing settings.
func (t TimingConfig) Durations() Durations {
	return Durations{
		ReadinessDelay: ParseDuration(t.ReadinessDelay, 3*time.Second),
		KillTimeout:    ParseDuration(t.KillTimeout, 5*time.Second),
		KillPoll:       ParseDuration(t.KillPoll, 100*time.Millisecond),
		PortRetryDelay: ParseDuration(t.PortRetryDelay, 500*time.Millisecond),
		PortSettle:     ParseDuration(t.PortSettle, 300*time.Millisecond),
		StatsInterval:  ParseDuration(t.StatsInterval, 2*time.Second),
	}
}

// Durations is the parsed form of TimingConfig.
type Durations struct {
	ReadinessDelay time.Duration
	KillTimeout    time.Duration
	KillPoll       time.Duration
	PortRetryDelay time.Duration
	PortSettle     time.Duration
	StatsInterval  time.Duration
}

// ParseDuration parses a duration string, returning defaultVal on error or empty.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}
