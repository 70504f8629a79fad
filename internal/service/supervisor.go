// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wingedpig/paddock/internal/config"
	"github.com/wingedpig/paddock/internal/events"
	"github.com/wingedpig/paddock/internal/logs"
	"github.com/wingedpig/paddock/internal/ports"
	"github.com/wingedpig/paddock/internal/state"
	"github.com/wingedpig/paddock/internal/stats"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultReadinessDelay = 3 * time.Second
	defaultShell          = "/bin/sh"
	logPrefix             = "[paddock] "
)

type procKey struct {
	project string
	app     string
}

// Supervisor starts, stops, restarts, and adopts app processes, keeping the
// state store in step with what is actually running.
type Supervisor struct {
	store  *state.Store
	logs   *logs.Aggregator
	ports  PortEnsurer
	killer TreeKiller
	bus    events.Bus
	stats  StatsSource
	git    GitSource

	readinessDelay time.Duration
	shell          string

	cfgMu sync.RWMutex
	cfg   *config.Config

	mu    sync.Mutex
	procs map[procKey]*Process
	locks map[string]*sync.Mutex

	flight singleflight.Group
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithEvents publishes lifecycle events to bus.
func WithEvents(bus events.Bus) Option {
	return func(s *Supervisor) { s.bus = bus }
}

// WithStats attaches resource samples to snapshots.
func WithStats(src StatsSource) Option {
	return func(s *Supervisor) { s.stats = src }
}

// WithGit attaches git status to snapshots.
func WithGit(src GitSource) Option {
	return func(s *Supervisor) { s.git = src }
}

// WithReadinessDelay sets how long a process must survive before it is
// promoted from starting to running.
func WithReadinessDelay(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.readinessDelay = d
		}
	}
}

// WithShell overrides the shell used to run app commands.
func WithShell(path string) Option {
	return func(s *Supervisor) { s.shell = path }
}

// New creates a supervisor.
func New(cfg *config.Config, store *state.Store, agg *logs.Aggregator, ensurer PortEnsurer, killer TreeKiller, opts ...Option) *Supervisor {
	s := &Supervisor{
		store:          store,
		logs:           agg,
		ports:          ensurer,
		killer:         killer,
		readinessDelay: defaultReadinessDelay,
		shell:          defaultShell,
		cfg:            cfg,
		procs:          make(map[procKey]*Process),
		locks:          make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the active configuration.
func (s *Supervisor) Config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig swaps the configuration used by future operations. Running
// processes are left alone.
func (s *Supervisor) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
	s.publish(events.Event{Type: events.ConfigReloaded})
}

func (s *Supervisor) lockProject(alias string) func() {
	s.mu.Lock()
	l, ok := s.locks[alias]
	if !ok {
		l = &sync.Mutex{}
		s.locks[alias] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *Supervisor) lookup(alias string) (*config.Config, config.Project, error) {
	cfg := s.Config()
	project, ok := cfg.FindProject(alias)
	if !ok {
		return nil, config.Project{}, fmt.Errorf("%w: %s", ErrUnknownProject, alias)
	}
	return cfg, project, nil
}

func (s *Supervisor) lookupApp(alias, name string) (*config.Config, config.Project, config.App, error) {
	cfg, project, err := s.lookup(alias)
	if err != nil {
		return nil, config.Project{}, config.App{}, err
	}
	app, ok := cfg.FindApp(name)
	if !ok {
		return nil, config.Project{}, config.App{}, fmt.Errorf("%w: %s", ErrUnknownApp, name)
	}
	return cfg, project, app, nil
}

func checkProfile(cfg *config.Config, profile string) error {
	if profile != "" && !cfg.HasProfile(profile) {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, profile)
	}
	return nil
}

// do serializes work per project and collapses identical concurrent requests.
func (s *Supervisor) do(key, alias string, fn func() error) error {
	_, err, _ := s.flight.Do(key, func() (interface{}, error) {
		unlock := s.lockProject(alias)
		defer unlock()
		return nil, fn()
	})
	return err
}

func (s *Supervisor) publish(ev events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), ev); err != nil {
		log.Debug("Event not published", "type", ev.Type, "err", err)
	}
}

func (s *Supervisor) handle(alias, app string) *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.procs[procKey{alias, app}]
}

func (s *Supervisor) track(p *Process) {
	s.mu.Lock()
	s.procs[procKey{p.Project, p.App}] = p
	s.mu.Unlock()
}

// untrack removes p if it is still the tracked handle for its app.
func (s *Supervisor) untrack(p *Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := procKey{p.Project, p.App}
	if s.procs[key] == p {
		delete(s.procs, key)
	}
}

func (s *Supervisor) projectHandles(alias string) []*Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Process
	for k, p := range s.procs {
		if k.project == alias {
			out = append(out, p)
		}
	}
	return out
}

// Tracked returns a copy of every tracked handle.
func (s *Supervisor) Tracked() []*Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Process, 0, len(s.procs))
	for _, p := range s.procs {
		out = append(out, p)
	}
	return out
}

// kill terminates a tracked handle and forgets it. Kill failures are logged;
// the record is marked stopped regardless by the caller.
func (s *Supervisor) kill(ctx context.Context, p *Process) {
	if err := p.Kill(ctx, s.killer); err != nil {
		log.Warn("Failed to stop process", "project", p.Project, "app", p.App, "pid", p.PID, "err", err)
	}
	s.untrack(p)
}

func (s *Supervisor) ensurePorts(ctx context.Context, alias string, want []int) {
	err := s.ports.EnsureAvailable(ctx, want)
	if err == nil {
		return
	}
	var busy *ports.BusyError
	if errors.As(err, &busy) {
		log.Warn("Ports still busy, starting anyway", "project", alias, "ports", busy.Ports)
		s.publish(events.Event{
			Type:    events.PortsBusy,
			Project: alias,
			Payload: map[string]interface{}{"ports": busy.Ports},
		})
		return
	}
	log.Warn("Port reconciliation failed, starting anyway", "project", alias, "err", err)
}

// defaultProfile returns the persisted default runtime profile.
func (s *Supervisor) defaultProfile() string {
	if p := s.store.Load().DefaultConfig; p != "" {
		return p
	}
	return s.Config().DefaultProfile()
}

// SetDefaultProfile persists the runtime profile used when none is given.
func (s *Supervisor) SetDefaultProfile(profile string) error {
	if !s.Config().HasProfile(profile) {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, profile)
	}
	_, err := s.store.Update(func(st *state.State) {
		st.DefaultConfig = profile
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// DefaultProfile returns the persisted default runtime profile.
func (s *Supervisor) DefaultProfile() string {
	return s.defaultProfile()
}

// StartProject starts every app of the project. An empty profile uses the
// persisted default.
func (s *Supervisor) StartProject(ctx context.Context, alias, profile string) error {
	cfg, project, err := s.lookup(alias)
	if err != nil {
		return err
	}
	if err := checkProfile(cfg, profile); err != nil {
		return err
	}
	return s.do("start-project/"+alias+"/"+profile, alias, func() error {
		return s.startProject(ctx, cfg, project, profile)
	})
}

func (s *Supervisor) startProject(ctx context.Context, cfg *config.Config, project config.Project, profile string) error {
	alias := project.Alias
	if profile == "" {
		profile = s.defaultProfile()
	}

	// Anything we already run for this project is replaced.
	s.killAll(ctx, s.projectHandles(alias))
	s.ensurePorts(ctx, alias, cfg.ProjectPorts(project))

	_, err := s.store.Update(func(st *state.State) {
		rt := st.Runtime(alias, profile)
		now := time.Now().UTC()
		rt.DopplerConfig = profile
		rt.StartedAt = &now
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	log.Info("Starting project", "project", alias, "profile", profile)
	s.publish(events.Event{Type: events.ProjectStarted, Project: alias, Payload: map[string]interface{}{"profile": profile}})

	var errs []error
	for _, app := range cfg.Apps {
		s.logs.Clear(alias, app.Name)
		if err := s.startApp(cfg, project, app, profile); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartApp starts a single app. An empty profile uses the project's current
// runtime profile, or the persisted default.
func (s *Supervisor) StartApp(ctx context.Context, alias, name, profile string) error {
	cfg, project, app, err := s.lookupApp(alias, name)
	if err != nil {
		return err
	}
	if err := checkProfile(cfg, profile); err != nil {
		return err
	}
	return s.do("start-app/"+alias+"/"+name+"/"+profile, alias, func() error {
		return s.startSingle(ctx, cfg, project, app, profile)
	})
}

func (s *Supervisor) startSingle(ctx context.Context, cfg *config.Config, project config.Project, app config.App, profile string) error {
	alias := project.Alias
	if profile == "" {
		profile = s.runtimeProfile(alias)
	} else if running := s.liveProfile(alias, app.Name); running != "" && running != profile {
		return fmt.Errorf("%w: %s runs with %s", ErrProfileMismatch, alias, running)
	}
	if p := s.handle(alias, app.Name); p != nil {
		s.kill(ctx, p)
	}
	s.ensurePorts(ctx, alias, []int{cfg.Port(app, project)})

	// Keeps an existing runtime's start time. With no other live app the
	// runtime takes on the requested profile.
	if _, err := s.store.Update(func(st *state.State) {
		st.Runtime(alias, profile).DopplerConfig = profile
	}); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return s.startApp(cfg, project, app, profile)
}

// liveProfile returns the runtime profile of alias if an app other than
// except is starting or running, or "".
func (s *Supervisor) liveProfile(alias, except string) string {
	rt, ok := s.store.Load().ActiveProjects[alias]
	if !ok {
		return ""
	}
	for name, rec := range rt.Processes {
		if name != except && rec.Status.Active() {
			return rt.DopplerConfig
		}
	}
	return ""
}

// runtimeProfile returns the profile of the project's runtime, or the default.
func (s *Supervisor) runtimeProfile(alias string) string {
	st := s.store.Load()
	if rt, ok := st.ActiveProjects[alias]; ok && rt.DopplerConfig != "" {
		return rt.DopplerConfig
	}
	if st.DefaultConfig != "" {
		return st.DefaultConfig
	}
	return s.Config().DefaultProfile()
}

// startApp spawns one app and records it as starting. Spawn failures are
// recorded as an error status, not returned.
func (s *Supervisor) startApp(cfg *config.Config, project config.Project, app config.App, profile string) error {
	alias := project.Alias
	port := cfg.Port(app, project)

	s.logs.AddLine(alias, app.Name, logPrefix+"Starting: "+app.Command)
	p, out, err := spawn(s.shell, cfg, project, app, profile)
	if err != nil {
		log.Error("Failed to start app", "project", alias, "app", app.Name, "err", err)
		s.logs.AddLine(alias, app.Name, logPrefix+"Failed to start: "+err.Error())
		_, werr := s.store.Update(func(st *state.State) {
			st.Runtime(alias, profile).Processes[app.Name] = &state.ProcessRecord{PID: 0, Port: port, Status: state.StatusError}
		})
		s.publish(events.Event{Type: events.AppCrashed, Project: alias, App: app.Name, Payload: map[string]interface{}{"error": err.Error()}})
		if werr != nil {
			return fmt.Errorf("save state: %w", werr)
		}
		return nil
	}

	s.track(p)
	go s.capture(alias, app.Name, out.stdout)
	go s.capture(alias, app.Name, out.stderr)

	// The record must exist before the exit handler can run.
	_, werr := s.store.Update(func(st *state.State) {
		st.Runtime(alias, profile).Processes[app.Name] = &state.ProcessRecord{PID: p.PID, Port: port, Status: state.StatusStarting}
	})
	go s.wait(p)

	log.Info("App starting", "project", alias, "app", app.Name, "pid", p.PID, "port", port)
	s.publish(events.Event{Type: events.AppStarting, Project: alias, App: app.Name, Payload: map[string]interface{}{"pid": p.PID, "port": port}})
	time.AfterFunc(s.readinessDelay, func() { s.promote(p) })

	if werr != nil {
		return fmt.Errorf("save state: %w", werr)
	}
	return nil
}

func (s *Supervisor) capture(alias, app string, f *os.File) {
	defer f.Close()
	err := logs.Capture(f, func(line string) {
		s.logs.AddLine(alias, app, line)
	})
	if err != nil {
		s.logs.AddLine(alias, app, logPrefix+"Output read error: "+err.Error())
	}
}

// promote marks p running if it survived the readiness delay and its
// record still belongs to it.
func (s *Supervisor) promote(p *Process) {
	if p.StopRequested() || !p.Alive() {
		return
	}
	promoted := false
	_, err := s.store.Update(func(st *state.State) {
		rec := st.Record(p.Project, p.App)
		if rec != nil && rec.PID == p.PID && rec.Status == state.StatusStarting {
			rec.Status = state.StatusRunning
			promoted = true
		}
	})
	if err != nil {
		log.Warn("Failed to save state", "err", err)
		return
	}
	if promoted {
		log.Info("App running", "project", p.Project, "app", p.App, "pid", p.PID)
		s.publish(events.Event{Type: events.AppRunning, Project: p.Project, App: p.App, Payload: map[string]interface{}{"pid": p.PID}})
	}
}

// wait reaps p and records how it ended.
func (s *Supervisor) wait(p *Process) {
	err := p.cmd.Wait()
	// Kill waits on done, so close it only once the record is settled.
	defer close(p.done)

	code := exitCode(err)
	status := state.StatusStopped
	if err != nil && !p.StopRequested() {
		status = state.StatusError
	}

	msg := "Process exited cleanly"
	if err != nil {
		msg = "Process exited: " + err.Error()
	}
	s.logs.AddLine(p.Project, p.App, logPrefix+msg)

	_, werr := s.store.Update(func(st *state.State) {
		rec := st.Record(p.Project, p.App)
		if rec == nil || rec.PID != p.PID {
			return
		}
		rec.Status = status
		// A requested stop leaves the runtime to the caller.
		if !p.StopRequested() {
			st.DropIfStopped(p.Project)
		}
	})
	if werr != nil {
		log.Warn("Failed to save state", "err", werr)
	}
	s.untrack(p)

	typ := events.AppStopped
	if status == state.StatusError {
		typ = events.AppCrashed
		log.Warn("App exited", "project", p.Project, "app", p.App, "pid", p.PID, "code", code)
	} else {
		log.Info("App exited", "project", p.Project, "app", p.App, "pid", p.PID, "code", code)
	}
	s.publish(events.Event{Type: typ, Project: p.Project, App: p.App, Payload: map[string]interface{}{"pid": p.PID, "exit_code": code}})
}

func (s *Supervisor) killAll(ctx context.Context, handles []*Process) {
	var g errgroup.Group
	for _, p := range handles {
		p := p
		g.Go(func() error {
			s.kill(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
}

// StopApp stops one app and marks it stopped. The project runtime is
// removed once every app is stopped.
func (s *Supervisor) StopApp(ctx context.Context, alias, name string) error {
	if _, _, _, err := s.lookupApp(alias, name); err != nil {
		return err
	}
	return s.do("stop-app/"+alias+"/"+name, alias, func() error {
		return s.stopApp(ctx, alias, name)
	})
}

func (s *Supervisor) stopApp(ctx context.Context, alias, name string) error {
	if p := s.handle(alias, name); p != nil {
		s.kill(ctx, p)
	}
	_, err := s.store.Update(func(st *state.State) {
		if rec := st.Record(alias, name); rec != nil {
			rec.Status = state.StatusStopped
		}
		st.DropIfStopped(alias)
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	log.Info("App stopped", "project", alias, "app", name)
	s.publish(events.Event{Type: events.AppStopped, Project: alias, App: name})
	return nil
}

// StopProject stops every tracked app of the project and removes its
// runtime. With nothing tracked it only clears the stale runtime.
// Aliases missing from the configuration are accepted so stale state can
// always be cleared.
func (s *Supervisor) StopProject(ctx context.Context, alias string) error {
	return s.do("stop-project/"+alias, alias, func() error {
		return s.stopProject(ctx, alias)
	})
}

func (s *Supervisor) stopProject(ctx context.Context, alias string) error {
	handles := s.projectHandles(alias)
	s.killAll(ctx, handles)

	_, err := s.store.Update(func(st *state.State) {
		delete(st.ActiveProjects, alias)
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	for _, p := range handles {
		s.publish(events.Event{Type: events.AppStopped, Project: alias, App: p.App})
	}
	log.Info("Project stopped", "project", alias, "apps", len(handles))
	s.publish(events.Event{Type: events.ProjectStopped, Project: alias})
	return nil
}

// StopAllProjects stops every project that is tracked or has a runtime.
func (s *Supervisor) StopAllProjects(ctx context.Context) error {
	aliases := make(map[string]bool)
	for alias := range s.store.Load().ActiveProjects {
		aliases[alias] = true
	}
	for _, p := range s.Tracked() {
		aliases[p.Project] = true
	}

	var g errgroup.Group
	for alias := range aliases {
		alias := alias
		g.Go(func() error {
			return s.StopProject(ctx, alias)
		})
	}
	return g.Wait()
}

// RestartProject stops and starts the project. An empty profile keeps the
// project's current profile.
func (s *Supervisor) RestartProject(ctx context.Context, alias, profile string) error {
	cfg, project, err := s.lookup(alias)
	if err != nil {
		return err
	}
	if err := checkProfile(cfg, profile); err != nil {
		return err
	}
	return s.do("restart-project/"+alias+"/"+profile, alias, func() error {
		if profile == "" {
			profile = s.runtimeProfile(alias)
		}
		if err := s.stopProject(ctx, alias); err != nil {
			return err
		}
		return s.startProject(ctx, cfg, project, profile)
	})
}

// RestartApp stops and starts one app, keeping the project's runtime.
func (s *Supervisor) RestartApp(ctx context.Context, alias, name string) error {
	cfg, project, app, err := s.lookupApp(alias, name)
	if err != nil {
		return err
	}
	return s.do("restart-app/"+alias+"/"+name, alias, func() error {
		return s.startSingle(ctx, cfg, project, app, s.runtimeProfile(alias))
	})
}

// AdoptRunningProcesses tracks processes recorded as running (or starting)
// by a previous run whose PIDs are still alive, and seeds their log buffers
// from disk. Returns the number adopted.
func (s *Supervisor) AdoptRunningProcesses(ctx context.Context) (int, error) {
	st, err := s.store.ReconcileLiveness()
	if err != nil {
		return 0, fmt.Errorf("reconcile state: %w", err)
	}

	var adopted []*Process
	for alias, rt := range st.ActiveProjects {
		for name, rec := range rt.Processes {
			if !rec.Status.Active() || s.handle(alias, name) != nil {
				continue
			}
			p := adopt(alias, name, rec.PID, rec.Port)
			if !p.Alive() {
				continue
			}
			s.track(p)
			adopted = append(adopted, p)
			if err := s.logs.LoadFromFile(alias, name); err != nil {
				log.Warn("Failed to load log history", "project", alias, "app", name, "err", err)
			}
		}
	}
	if len(adopted) == 0 {
		return 0, nil
	}

	// Anything that survived a restart is past its readiness window.
	_, err = s.store.Update(func(st *state.State) {
		for _, p := range adopted {
			if rec := st.Record(p.Project, p.App); rec != nil && rec.PID == p.PID {
				rec.Status = state.StatusRunning
			}
		}
	})
	for _, p := range adopted {
		log.Info("Adopted running app", "project", p.Project, "app", p.App, "pid", p.PID)
		s.publish(events.Event{Type: events.AppAdopted, Project: p.Project, App: p.App, Payload: map[string]interface{}{"pid": p.PID}})
	}
	if err != nil {
		return len(adopted), fmt.Errorf("save state: %w", err)
	}
	return len(adopted), nil
}

// Reconcile demotes dead PIDs in the state store and forgets adopted
// handles whose process has gone. Spawned handles clean up on exit.
func (s *Supervisor) Reconcile(ctx context.Context) error {
	if _, err := s.store.ReconcileLiveness(); err != nil {
		return fmt.Errorf("reconcile state: %w", err)
	}
	for _, p := range s.Tracked() {
		if p.Adopted && !p.Alive() {
			s.untrack(p)
			log.Info("Adopted app exited", "project", p.Project, "app", p.App, "pid", p.PID)
			s.publish(events.Event{Type: events.AppStopped, Project: p.Project, App: p.App, Payload: map[string]interface{}{"pid": p.PID}})
		}
	}
	return nil
}

// StatsTargets lists every tracked process for sampling.
func (s *Supervisor) StatsTargets() []stats.Target {
	handles := s.Tracked()
	out := make([]stats.Target, 0, len(handles))
	for _, p := range handles {
		out = append(out, stats.Target{Project: p.Project, App: p.App, PID: p.PID, Port: p.Port})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Project != out[j].Project {
			return out[i].Project < out[j].Project
		}
		return out[i].App < out[j].App
	})
	return out
}

// Snapshot returns the status of every configured project, in config order.
func (s *Supervisor) Snapshot() []ProjectStatus {
	cfg := s.Config()
	st := s.store.Load()

	out := make([]ProjectStatus, 0, len(cfg.Projects))
	for _, project := range cfg.Projects {
		out = append(out, s.projectStatus(cfg, st, project))
	}
	return out
}

// ProjectSnapshot returns the status of one project.
func (s *Supervisor) ProjectSnapshot(alias string) (ProjectStatus, error) {
	cfg, project, err := s.lookup(alias)
	if err != nil {
		return ProjectStatus{}, err
	}
	return s.projectStatus(cfg, s.store.Load(), project), nil
}

func (s *Supervisor) projectStatus(cfg *config.Config, st *state.State, project config.Project) ProjectStatus {
	ps := ProjectStatus{
		Alias: project.Alias,
		Path:  project.Path,
		Index: project.Index,
		Apps:  make([]AppStatus, 0, len(cfg.Apps)),
	}
	rt, active := st.ActiveProjects[project.Alias]
	if active {
		ps.Active = true
		ps.Profile = rt.DopplerConfig
		ps.StartedAt = rt.StartedAt
	}
	if s.git != nil {
		if g, ok := s.git.Cached(project.Path); ok {
			ps.Git = &g
		}
	}

	for _, app := range cfg.Apps {
		as := AppStatus{
			Name:   app.Name,
			Port:   cfg.Port(app, project),
			Status: state.StatusStopped,
		}
		if active {
			if rec, ok := rt.Processes[app.Name]; ok {
				as.Status = rec.Status
				as.PID = rec.PID
			}
		}
		if p := s.handle(project.Alias, app.Name); p != nil {
			as.Adopted = p.Adopted
			as.Streaming = p.Streaming
		}
		if s.stats != nil && as.Status.Active() {
			if sample, ok := s.stats.Latest(project.Alias, app.Name); ok {
				as.Stats = &sample
			}
		}
		ps.Apps = append(ps.Apps, as)
	}
	return ps
}

// Shutdown kills every tracked process. Used when the daemon is asked to
// stop its apps on exit.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	return s.StopAllProjects(ctx)
}
