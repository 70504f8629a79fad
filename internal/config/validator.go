// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	aliasPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
	envVarPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateProjects(cfg, errs)
	v.validateApps(cfg, errs)
	v.validatePorts(cfg, errs)
	v.validateServer(cfg, errs)
	v.validateTiming(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateProjects(cfg *Config, errs *ValidationError) {
	if len(cfg.Projects) == 0 {
		errs.Add("projects", "at least one project is required")
	}

	seenAliases := make(map[string]bool)
	seenIndexes := make(map[int]string)
	for i, p := range cfg.Projects {
		prefix := fmt.Sprintf("projects[%d]", i)

		switch {
		case p.Alias == "":
			errs.Add(prefix+".alias", "is required")
		case !aliasPattern.MatchString(p.Alias):
			errs.Add(prefix+".alias", fmt.Sprintf("invalid alias '%s'", p.Alias))
		case seenAliases[p.Alias]:
			errs.Add(prefix+".alias", fmt.Sprintf("duplicate project alias '%s'", p.Alias))
		default:
			seenAliases[p.Alias] = true
		}

		if p.Path == "" {
			errs.Add(prefix+".path", "is required")
		}
		if p.Index < 0 {
			errs.Add(prefix+".index", "must not be negative")
		} else if other, ok := seenIndexes[p.Index]; ok {
			errs.Add(prefix+".index", fmt.Sprintf("index %d already used by project '%s'", p.Index, other))
		} else {
			seenIndexes[p.Index] = p.Alias
		}
	}
}

func (v *Validator) validateApps(cfg *Config, errs *ValidationError) {
	if len(cfg.Apps) == 0 {
		errs.Add("apps", "at least one app is required")
	}

	seenNames := make(map[string]bool)
	seenEnv := make(map[string]string)
	for i, app := range cfg.Apps {
		prefix := fmt.Sprintf("apps[%d]", i)

		if app.Name == "" {
			errs.Add(prefix+".name", "is required")
		} else if !aliasPattern.MatchString(app.Name) {
			errs.Add(prefix+".name", fmt.Sprintf("invalid app name '%s'", app.Name))
		} else if seenNames[app.Name] {
			errs.Add(prefix+".name", fmt.Sprintf("duplicate app name '%s'", app.Name))
		} else {
			seenNames[app.Name] = true
		}

		if strings.TrimSpace(app.Command) == "" {
			errs.Add(prefix+".command", "is required")
		}
		if app.BasePort <= 0 || app.BasePort > 65535 {
			errs.Add(prefix+".base_port", "must be between 1 and 65535")
		}

		for _, field := range []struct{ name, value string }{
			{"port_env", app.PortEnv},
			{"host_env", app.HostEnv},
		} {
			if field.value == "" {
				continue
			}
			if !envVarPattern.MatchString(field.value) {
				errs.Add(prefix+"."+field.name, fmt.Sprintf("invalid environment variable name '%s'", field.value))
				continue
			}
			if owner, ok := seenEnv[field.value]; ok {
				errs.Add(prefix+"."+field.name, fmt.Sprintf("variable '%s' already used by app '%s'", field.value, owner))
				continue
			}
			seenEnv[field.value] = app.Name
		}
	}
}

// validatePorts rejects configurations where two apps, in any projects,
// resolve to the same port.
func (v *Validator) validatePorts(cfg *Config, errs *ValidationError) {
	if cfg.PortStride < 0 {
		errs.Add("port_stride", "must not be negative")
		return
	}

	owners := make(map[int]string)
	for _, p := range cfg.Projects {
		for _, app := range cfg.Apps {
			port := cfg.Port(app, p)
			owner := p.Alias + "/" + app.Name
			if port <= 0 || port > 65535 {
				errs.Add("ports", fmt.Sprintf("%s resolves to out-of-range port %d", owner, port))
				continue
			}
			if prev, ok := owners[port]; ok {
				errs.Add("ports", fmt.Sprintf("%s and %s both resolve to port %d", prev, owner, port))
				continue
			}
			owners[port] = owner
		}
	}
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs.Add("server.port", "must be between 0 and 65535")
	}
}

func (v *Validator) validateTiming(cfg *Config, errs *ValidationError) {
	durations := map[string]string{
		"timing.readiness_delay":  cfg.Timing.ReadinessDelay,
		"timing.kill_timeout":     cfg.Timing.KillTimeout,
		"timing.kill_poll":        cfg.Timing.KillPoll,
		"timing.port_retry_delay": cfg.Timing.PortRetryDelay,
		"timing.port_settle":      cfg.Timing.PortSettle,
		"timing.stats_interval":   cfg.Timing.StatsInterval,
		"crashes.max_age":         cfg.Crashes.MaxAge,
	}
	for field, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			errs.Add(field, fmt.Sprintf("invalid duration '%s'", value))
		}
	}
	if cfg.Timing.PortRetries < 0 {
		errs.Add("timing.port_retries", "must not be negative")
	}
	if cfg.Crashes.MaxCount < 0 {
		errs.Add("crashes.max_count", "must not be negative")
	}
	if cfg.Crashes.Lines < 0 {
		errs.Add("crashes.lines", "must not be negative")
	}
}
