// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app wires paddock's components together and runs the daemon.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wingedpig/paddock/internal/api"
	"github.com/wingedpig/paddock/internal/config"
	"github.com/wingedpig/paddock/internal/crashes"
	"github.com/wingedpig/paddock/internal/events"
	"github.com/wingedpig/paddock/internal/git"
	"github.com/wingedpig/paddock/internal/logs"
	"github.com/wingedpig/paddock/internal/ports"
	"github.com/wingedpig/paddock/internal/proc"
	"github.com/wingedpig/paddock/internal/service"
	"github.com/wingedpig/paddock/internal/state"
	"github.com/wingedpig/paddock/internal/stats"
	"github.com/wingedpig/paddock/internal/watcher"
)

const configDebounce = 300 * time.Millisecond

// App is the main application container.
type App struct {
	mu sync.Mutex

	configPath string
	stopOnExit bool
	config     *config.Config

	eventBus   *events.MemoryBus
	store      *state.Store
	logs       *logs.Aggregator
	crashes    *crashes.Manager
	reconciler *ports.Reconciler
	prober     *stats.Prober
	git        *git.Probe
	supervisor *service.Supervisor
	watcher    *watcher.ConfigWatcher
	apiServer  *api.Server
	ticker     *Ticker

	ticks    atomic.Int64
	done     chan struct{}
	stopOnce sync.Once
}

// Options holds configuration options for the app.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	Debug      bool
	StopOnExit bool // Kill every app when the daemon exits
}

// New loads the configuration and builds every component.
func New(opts Options) (*App, error) {
	loader := config.NewLoader()
	path := opts.ConfigPath
	if path == "" {
		found, err := loader.FindConfig()
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg, err := loader.LoadWithDefaults(context.Background(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	ConfigureLogging(cfg.Logging.Level, opts.Debug)

	timing := cfg.Timing.Durations()
	killer := proc.NewKiller(timing.KillTimeout, timing.KillPoll)

	app := &App{
		configPath: path,
		stopOnExit: opts.StopOnExit,
		config:     cfg,
		eventBus:   events.NewMemoryBus(0, 0),
		store:      state.NewStore(cfg.StateFile, cfg.DefaultProfile()),
		logs:       logs.NewAggregator(cfg.LogDir, cfg.LogBufferSize),
		reconciler: ports.NewReconciler(killer,
			ports.WithAttempts(cfg.Timing.PortRetries),
			ports.WithDelays(timing.PortRetryDelay, timing.PortSettle),
		),
		prober: stats.NewProber(),
		git:    git.NewProbe(nil),
		done:   make(chan struct{}),
	}
	app.supervisor = service.New(cfg, app.store, app.logs, app.reconciler, killer,
		service.WithEvents(app.eventBus),
		service.WithStats(app.prober),
		service.WithGit(app.git),
		service.WithReadinessDelay(timing.ReadinessDelay),
	)
	app.crashes, err = crashes.NewManager(crashes.Config{
		Dir:      cfg.Crashes.Dir,
		MaxAge:   config.ParseDuration(cfg.Crashes.MaxAge, 7*24*time.Hour),
		MaxCount: cfg.Crashes.MaxCount,
		Lines:    cfg.Crashes.Lines,
	}, app.logs, app.eventBus)
	if err != nil {
		return nil, err
	}
	app.apiServer = api.NewServer(
		api.ServerConfig{Host: cfg.Server.Host, Port: cfg.Server.Port},
		api.Dependencies{
			Supervisor: app.supervisor,
			Logs:       app.logs,
			EventBus:   app.eventBus,
			Crashes:    app.crashes,
		},
	)
	app.ticker = NewTicker(timing.StatsInterval, app.tick)
	return app, nil
}

// ConfigureLogging sets the level of the process-wide logger. debug wins
// over level.
func ConfigureLogging(level string, debug bool) {
	log.SetReportTimestamp(true)
	if debug {
		log.SetLevel(log.DebugLevel)
		return
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warn("Unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// Supervisor returns the process supervisor.
func (app *App) Supervisor() *service.Supervisor {
	return app.supervisor
}

// EventBus returns the lifecycle event bus.
func (app *App) EventBus() events.Bus {
	return app.eventBus
}

// Addr returns the API listen address.
func (app *App) Addr() string {
	return app.apiServer.Addr()
}

// Start adopts processes left by a previous run and starts the background
// components and the API server.
func (app *App) Start(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	n, err := app.supervisor.AdoptRunningProcesses(ctx)
	if err != nil {
		log.Warn("Failed to adopt running processes", "err", err)
	}
	if n > 0 {
		log.Info("Adopted running apps", "count", n)
	}

	if err := app.crashes.Subscribe(); err != nil {
		log.Warn("Crash recording disabled", "err", err)
	}

	app.git.Refresh(ctx, projectPaths(app.config))

	w, err := watcher.NewConfigWatcher(app.configPath, configDebounce, config.NewLoader().LoadWithDefaults, app.applyConfig)
	if err != nil {
		log.Warn("Config hot reload disabled", "err", err)
	} else {
		app.watcher = w
	}

	app.ticker.Start(context.WithoutCancel(ctx))

	go func() {
		if err := app.apiServer.ListenAndServe(); err != nil {
			log.Error("API server error", "err", err)
			app.Stop()
		}
	}()
	return nil
}

// applyConfig swaps in a reloaded configuration. Server, state, log, and
// crash settings only take effect on restart.
func (app *App) applyConfig(cfg *config.Config) {
	app.mu.Lock()
	app.config = cfg
	app.mu.Unlock()

	app.supervisor.UpdateConfig(cfg)
	log.Info("Applied new config", "projects", len(cfg.Projects), "apps", len(cfg.Apps))
}

func (app *App) currentConfig() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.config
}

// tick samples stats, reconciles liveness, refreshes git status, and
// periodically truncates log files.
func (app *App) tick(ctx context.Context) {
	cfg := app.currentConfig()
	n := app.ticks.Add(1)

	app.prober.Sample(ctx, app.supervisor.StatsTargets())
	if err := app.supervisor.Reconcile(ctx); err != nil {
		log.Warn("Reconcile failed", "err", err)
	}
	app.git.Refresh(ctx, projectPaths(cfg))

	if every := int64(cfg.Timing.TruncateEvery); every > 0 && n%every == 0 {
		if err := app.logs.TruncateAll(); err != nil {
			log.Warn("Failed to truncate log files", "err", err)
		}
	}
}

func projectPaths(cfg *config.Config) []string {
	paths := make([]string, 0, len(cfg.Projects))
	for _, p := range cfg.Projects {
		paths = append(paths, p.Path)
	}
	return paths
}

// Run starts the app and blocks until shutdown.
func (app *App) Run(ctx context.Context) error {
	if err := app.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", "signal", sig)
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down")
	case <-app.done:
		log.Info("Shutdown requested")
	}

	return app.Shutdown(context.Background())
}

// Shutdown stops the API server and background work. Apps keep running,
// to be adopted on the next start, unless StopOnExit was set.
func (app *App) Shutdown(ctx context.Context) error {
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := app.apiServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down API server", "err", err)
	}
	app.ticker.Stop()

	app.mu.Lock()
	w := app.watcher
	app.mu.Unlock()
	if w != nil {
		w.Close()
	}

	if app.stopOnExit {
		if err := app.supervisor.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error stopping apps", "err", err)
		}
	} else if n := len(app.supervisor.Tracked()); n > 0 {
		log.Info("Leaving apps running", "count", n)
	}

	app.crashes.Close()
	app.logs.Close()
	app.eventBus.Close()

	log.Info("Shutdown complete")
	return nil
}

// Stop signals the app to shut down. Safe to call multiple times.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}
