// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package output renders API results for paddock-ctl as text tables, JSON,
// or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/wingedpig/paddock/pkg/client"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses an output format string.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "table":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (use text, json, or yaml)", s)
	}
}

// Printer writes API results in one format.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// structured writes v as JSON or YAML. Returns false in text mode.
func (p *Printer) structured(v interface{}) (bool, error) {
	switch p.format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintf(p.w, "%s\n", data)
		return true, err
	case FormatYAML:
		data, err := toYAML(v)
		if err != nil {
			return true, err
		}
		_, err = p.w.Write(data)
		return true, err
	}
	return false, nil
}

// streamed writes one item of a stream: a JSON line or a YAML document.
func (p *Printer) streamed(v interface{}) (bool, error) {
	switch p.format {
	case FormatJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintf(p.w, "%s\n", data)
		return true, err
	case FormatYAML:
		data, err := toYAML(v)
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintf(p.w, "---\n%s", data)
		return true, err
	}
	return false, nil
}

// toYAML encodes v with the same keys and field order as its JSON form.
func toYAML(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Style &^= yaml.DoubleQuotedStyle
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// StatusColor returns the color used for an app status.
func StatusColor(status string) *color.Color {
	switch status {
	case client.AppStatusRunning:
		return color.New(color.FgGreen)
	case client.AppStatusStarting:
		return color.New(color.FgYellow)
	case client.AppStatusError:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgHiBlack)
	}
}

// Projects prints every project as rows of apps.
func (p *Printer) Projects(projects []client.Project) error {
	if ok, err := p.structured(projects); ok {
		return err
	}

	fmt.Fprintf(p.w, "%-12s %-12s %-6s %-10s %-8s %-7s %-9s %-8s %s\n",
		"PROJECT", "APP", "PORT", "STATUS", "PID", "CPU", "MEM", "PROFILE", "GIT")
	fmt.Fprintln(p.w, strings.Repeat("-", 90))
	for _, proj := range projects {
		p.projectRows(proj)
	}
	return nil
}

// Project prints one project.
func (p *Printer) Project(project client.Project) error {
	return p.Projects([]client.Project{project})
}

func (p *Printer) projectRows(proj client.Project) {
	name := proj.Alias
	if proj.Active {
		name += " *"
	}
	profile := proj.Profile
	if profile == "" {
		profile = "-"
	}
	for i, a := range proj.Apps {
		pid, cpu, mem := "-", "-", "-"
		if a.PID > 0 {
			pid = strconv.Itoa(a.PID)
		}
		if a.Stats != nil {
			cpu = fmt.Sprintf("%.1f%%", a.Stats.CPUPercent)
			mem = FormatBytes(a.Stats.MemoryRSS)
		}
		status := StatusColor(a.Status).Sprintf("%-10s", a.Status)
		gitCol := ""
		if i == 0 {
			gitCol = formatGit(proj.Git)
		} else {
			name, profile = "", ""
		}
		fmt.Fprintf(p.w, "%-12s %-12s %-6d %s %-8s %-7s %-9s %-8s %s\n",
			name, a.Name, a.Port, status, pid, cpu, mem, profile, gitCol)
	}
}

func formatGit(g *client.GitStatus) string {
	if g == nil {
		return "-"
	}
	s := g.Branch
	if g.Detached {
		s = "(" + s + ")"
	}
	if g.Dirty {
		s += color.YellowString(" +%d", g.Changes)
	}
	return s
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Logs prints a slice of a log buffer.
func (p *Printer) Logs(logs *client.Logs) error {
	if ok, err := p.structured(logs); ok {
		return err
	}
	for _, line := range logs.Lines {
		p.logLine(line)
	}
	if logs.Query != "" {
		fmt.Fprintf(p.w, "%d of %d lines match %q\n", len(logs.Lines), logs.Total, logs.Query)
	}
	return nil
}

// LogEvent prints one streamed log line.
func (p *Printer) LogEvent(ev client.LogEvent) error {
	if ok, err := p.streamed(ev); ok {
		return err
	}
	fmt.Fprint(p.w, color.CyanString("%s/%s ", ev.Project, ev.App))
	p.logLine(ev.Line)
	return nil
}

func (p *Printer) logLine(line client.LogLine) {
	fmt.Fprintf(p.w, "%s %s\n", line.Time.Format("15:04:05.000"), line.Text)
}

// Events prints lifecycle events as a table.
func (p *Printer) Events(events []client.Event) error {
	if ok, err := p.structured(events); ok {
		return err
	}
	fmt.Fprintf(p.w, "%-20s %-20s %-12s %-12s %s\n", "TIME", "TYPE", "PROJECT", "APP", "DETAILS")
	fmt.Fprintln(p.w, strings.Repeat("-", 90))
	for _, ev := range events {
		p.eventRow(ev)
	}
	return nil
}

// Event prints one streamed event.
func (p *Printer) Event(ev client.Event) error {
	if ok, err := p.streamed(ev); ok {
		return err
	}
	p.eventRow(ev)
	return nil
}

func (p *Printer) eventRow(ev client.Event) {
	typ := fmt.Sprintf("%-20s", ev.Type)
	switch ev.Type {
	case "app.crashed":
		typ = color.RedString("%s", typ)
	case "ports.busy":
		typ = color.YellowString("%s", typ)
	}
	fmt.Fprintf(p.w, "%-20s %s %-12s %-12s %s\n",
		ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
		typ,
		dash(ev.Project),
		dash(ev.App),
		formatPayload(ev.Payload),
	)
}

func formatPayload(payload map[string]interface{}) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return strings.Join(parts, " ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Profiles prints the configured profiles, marking the default.
func (p *Printer) Profiles(profiles *client.Profiles) error {
	if ok, err := p.structured(profiles); ok {
		return err
	}
	for _, name := range profiles.Profiles {
		if name == profiles.Default {
			fmt.Fprintf(p.w, "%s %s\n", color.GreenString("*"), name)
		} else {
			fmt.Fprintf(p.w, "  %s\n", name)
		}
	}
	return nil
}

// Crashes prints crash summaries as a table, newest first.
func (p *Printer) Crashes(crashes []client.CrashSummary) error {
	if ok, err := p.structured(crashes); ok {
		return err
	}
	if len(crashes) == 0 {
		fmt.Fprintln(p.w, "No crashes recorded")
		return nil
	}
	fmt.Fprintf(p.w, "%-36s %-20s %-12s %-12s %s\n", "ID", "TIME", "PROJECT", "APP", "EXIT")
	fmt.Fprintln(p.w, strings.Repeat("-", 90))
	for _, c := range crashes {
		exit := fmt.Sprintf("%d", c.ExitCode)
		if c.Error != "" {
			exit = color.RedString("%s", c.Error)
		}
		fmt.Fprintf(p.w, "%-36s %-20s %-12s %-12s %s\n",
			c.ID,
			c.Timestamp.Local().Format("2006-01-02 15:04:05"),
			c.Project,
			c.App,
			exit,
		)
	}
	return nil
}

// Crash prints a crash report followed by the captured output.
func (p *Printer) Crash(crash *client.Crash) error {
	if ok, err := p.structured(crash); ok {
		return err
	}
	fmt.Fprintf(p.w, "Crash: %s\n", crash.ID)
	fmt.Fprintf(p.w, "  App:       %s/%s\n", crash.Project, crash.App)
	fmt.Fprintf(p.w, "  Time:      %s\n", crash.Timestamp.Local().Format("2006-01-02 15:04:05"))
	if crash.PID > 0 {
		fmt.Fprintf(p.w, "  PID:       %d\n", crash.PID)
	}
	fmt.Fprintf(p.w, "  Exit code: %d\n", crash.ExitCode)
	if crash.Error != "" {
		fmt.Fprintf(p.w, "  Error:     %s\n", color.RedString("%s", crash.Error))
	}
	fmt.Fprintln(p.w)

	if len(crash.Lines) == 0 {
		fmt.Fprintln(p.w, "No output captured")
		return nil
	}
	if crash.Dropped > 0 {
		fmt.Fprintf(p.w, "... %d earlier lines not kept\n", crash.Dropped)
	}
	for _, line := range crash.Lines {
		p.logLine(line)
	}
	return nil
}

// Message prints a confirmation line. Structured formats print nothing.
func (p *Printer) Message(format string, args ...interface{}) {
	if p.format == FormatText {
		fmt.Fprintf(p.w, format+"\n", args...)
	}
}
