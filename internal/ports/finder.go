// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ports

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// Finder locates PIDs holding a TCP port.
type Finder interface {
	Name() string
	Find(ctx context.Context, port int) ([]int, error)
}

// SocketFinder reads the kernel socket table.
type SocketFinder struct{}

func (SocketFinder) Name() string { return "sockets" }

func (SocketFinder) Find(ctx context.Context, port int) ([]int, error) {
	conns, err := psnet.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return nil, err
	}
	var pids []int
	for _, c := range conns {
		if int(c.Laddr.Port) != port || c.Pid <= 0 {
			continue
		}
		pids = append(pids, int(c.Pid))
	}
	return pids, nil
}

// LsofFinder shells out to lsof with the given port selector arguments.
type LsofFinder struct {
	label string
	args  func(port int) []string
	parse func(out string, port int) []int
}

// NewLsofFinder matches any socket bound locally to the port. lsof's -i
// selector also matches the remote side, so its field output is filtered
// to keep clients of the port out.
func NewLsofFinder() *LsofFinder {
	return &LsofFinder{
		label: "lsof",
		args: func(port int) []string {
			return []string{"-F", "pn", "-P", "-n", "-i", ":" + strconv.Itoa(port)}
		},
		parse: parseLocalPIDs,
	}
}

// NewLsofListenFinder matches only TCP listeners on the port.
func NewLsofListenFinder() *LsofFinder {
	return &LsofFinder{
		label: "lsof-listen",
		args: func(port int) []string {
			return []string{"-t", "-iTCP:" + strconv.Itoa(port), "-sTCP:LISTEN"}
		},
		parse: func(out string, _ int) []int { return parsePIDs(out) },
	}
}

func (f *LsofFinder) Name() string { return f.label }

func (f *LsofFinder) Find(ctx context.Context, port int) ([]int, error) {
	out, err := exec.CommandContext(ctx, "lsof", f.args(port)...).Output()
	if err != nil {
		// lsof exits 1 when nothing matches.
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, err
	}
	return f.parse(string(out), port), nil
}

// parseLocalPIDs reads lsof field output (p<pid>, f<fd>, n<name> lines)
// and returns the PIDs with a socket whose local address is on port.
// Names look like "*:3000", "127.0.0.1:3000->127.0.0.1:52114" or
// "[::1]:52114->[::1]:3000".
func parseLocalPIDs(out string, port int) []int {
	suffix := ":" + strconv.Itoa(port)
	var pids []int
	pid, matched := 0, false
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		switch line[0] {
		case 'p':
			n, err := strconv.Atoi(line[1:])
			if err != nil || n <= 0 {
				pid = 0
				continue
			}
			pid, matched = n, false
		case 'n':
			local, _, _ := strings.Cut(line[1:], "->")
			if pid > 0 && !matched && strings.HasSuffix(local, suffix) {
				matched = true
				pids = append(pids, pid)
			}
		}
	}
	return pids
}

// parsePIDs extracts one PID per line, skipping anything unparseable.
func parsePIDs(out string) []int {
	var pids []int
	for _, field := range strings.Fields(out) {
		pid, err := strconv.Atoi(field)
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}

// DefaultFinders returns the finders used by the reconciler, in order.
func DefaultFinders() []Finder {
	return []Finder{SocketFinder{}, NewLsofFinder(), NewLsofListenFinder()}
}

// findAll unions the results of every finder, excluding self.
func findAll(ctx context.Context, finders []Finder, port, self int) []int {
	seen := make(map[int]bool)
	var pids []int
	for _, f := range finders {
		found, err := f.Find(ctx, port)
		if err != nil {
			log.Debug("Port finder failed", "finder", f.Name(), "port", port, "err", err)
			continue
		}
		for _, pid := range found {
			if pid == self || seen[pid] {
				continue
			}
			seen[pid] = true
			pids = append(pids, pid)
		}
	}
	return pids
}
