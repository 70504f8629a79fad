// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/wingedpig/paddock/internal/config"
	"github.com/wingedpig/paddock/internal/proc"
)

// exitWait bounds how long Kill waits for the exit handler after the
// process tree is gone.
const exitWait = 2 * time.Second

// Process is the handle for one app process, spawned by this supervisor or
// adopted from a previous run. Only spawned processes stream output.
type Process struct {
	Project   string
	App       string
	PID       int
	Port      int
	Streaming bool
	Adopted   bool

	cmd           *exec.Cmd     // nil when adopted
	done          chan struct{} // closed after Wait returns; nil when adopted
	stopRequested atomic.Bool
}

// Alive reports whether the process is still running.
func (p *Process) Alive() bool {
	if p.done != nil {
		select {
		case <-p.done:
			return false
		default:
		}
	}
	return proc.Alive(p.PID)
}

// Kill terminates the process tree. For spawned processes it also waits,
// briefly, for the exit handler to run.
func (p *Process) Kill(ctx context.Context, killer TreeKiller) error {
	p.stopRequested.Store(true)
	if err := killer.KillTree(ctx, p.PID); err != nil {
		return fmt.Errorf("kill %s/%s (pid %d): %w", p.Project, p.App, p.PID, err)
	}
	if p.done != nil {
		select {
		case <-p.done:
		case <-time.After(exitWait):
		case <-ctx.Done():
		}
	}
	return nil
}

// StopRequested reports whether Kill has been called.
func (p *Process) StopRequested() bool {
	return p.stopRequested.Load()
}

// launchEnv builds the environment for app in project: the inherited
// environment, the runtime profile, the app's static variables, and the
// port and host variables of every app in the project.
func launchEnv(cfg *config.Config, project config.Project, app config.App, profile string) []string {
	env := os.Environ()
	env = append(env,
		"DOPPLER_CONFIG="+profile,
		"PADDOCK_PROJECT="+project.Alias,
	)
	env = appendSorted(env, app.Env)
	env = appendSorted(env, cfg.LaunchEnv(project))
	return env
}

func appendSorted(env []string, vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}

// pipes holds the read ends of a spawned process's stdout and stderr.
type pipes struct {
	stdout *os.File
	stderr *os.File
}

// ignorePipe is prepended to every app command. Apps outlive the daemon,
// and with it the read ends of their output pipes; an ignored SIGPIPE is
// inherited across exec, so later writes fail with EPIPE instead of
// killing the app.
const ignorePipe = "trap '' PIPE; "

// spawn starts app's command through the shell in its own process group.
// Output goes to OS pipes so Wait doesn't depend on the readers, and
// grandchildren holding the pipes open can't block it.
func spawn(shell string, cfg *config.Config, project config.Project, app config.App, profile string) (*Process, pipes, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, pipes{}, fmt.Errorf("stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, pipes{}, fmt.Errorf("stderr pipe: %w", err)
	}

	cmd := exec.Command(shell, "-c", ignorePipe+app.Command)
	cmd.Dir = filepath.Join(project.Path, app.Dir)
	cmd.Env = launchEnv(cfg, project, app, profile)
	cmd.Stdout = outW
	cmd.Stderr = errW
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	startErr := cmd.Start()
	// The child has its own copies of the write ends.
	outW.Close()
	errW.Close()
	if startErr != nil {
		outR.Close()
		errR.Close()
		return nil, pipes{}, fmt.Errorf("start %q in %s: %w", app.Command, cmd.Dir, startErr)
	}

	p := &Process{
		Project:   project.Alias,
		App:       app.Name,
		PID:       cmd.Process.Pid,
		Port:      cfg.Port(app, project),
		Streaming: true,
		cmd:       cmd,
		done:      make(chan struct{}),
	}
	return p, pipes{stdout: outR, stderr: errR}, nil
}

// adopt wraps a PID left running by a previous supervisor.
func adopt(project, app string, pid, port int) *Process {
	return &Process{
		Project: project,
		App:     app,
		PID:     pid,
		Port:    port,
		Adopted: true,
	}
}

// exitCode extracts the exit status from a Wait error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
