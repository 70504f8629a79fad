// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wingedpig/paddock/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a paddock.hjson in the current directory",
	Long: `Create a new paddock.hjson configuration file in the current directory.

The command asks about:
  - Projects (alias and checkout path)
  - Apps to run in every project (name, command, base port)
  - API port

After running init:
  1. Review and edit paddock.hjson as needed
  2. Run: paddock
  3. Check: paddock-ctl status`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

type initProject struct {
	Alias string
	Path  string
}

type initApp struct {
	Name     string
	Command  string
	BasePort int
	PortEnv  string
}

type initConfig struct {
	Projects []initProject
	Apps     []initApp
	APIPort  int
}

func runInit(in io.Reader, out io.Writer) error {
	configFile := config.ConfigFileName
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use a different directory", configFile)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "Paddock Configuration Setup")
	fmt.Fprintln(out, "===========================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Press Enter to accept defaults shown in [brackets].")
	fmt.Fprintln(out)

	var cfg initConfig

	fmt.Fprintln(out, "Projects are checkouts of the same codebase. Each gets its own port block.")
	for {
		alias, path := "main", cwd
		if n := len(cfg.Projects); n > 0 {
			alias = "alt" + strconv.Itoa(n)
			path = filepath.Join(filepath.Dir(cwd), alias)
		}
		p := initProject{}
		p.Alias = prompt(reader, out, "  Project alias", alias)
		p.Path = prompt(reader, out, "  Checkout path", path)
		cfg.Projects = append(cfg.Projects, p)

		if strings.ToLower(prompt(reader, out, "Add another project? (y/n)", "n")) != "y" {
			break
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Apps are the processes started in every project (e.g., your API server).")
	for {
		name, base := "web", 3000
		if n := len(cfg.Apps); n > 0 {
			name, base = "app"+strconv.Itoa(n), cfg.Apps[n-1].BasePort+1
		}
		a := initApp{}
		a.Name = prompt(reader, out, "  App name", name)
		a.Command = prompt(reader, out, "  Command to run", "npm run dev")
		a.BasePort = promptInt(reader, out, "  Base port", base)
		a.PortEnv = prompt(reader, out, "  Variable receiving the port (or empty)", strings.ToUpper(a.Name)+"_PORT")
		cfg.Apps = append(cfg.Apps, a)

		if strings.ToLower(prompt(reader, out, "Add another app? (y/n)", "n")) != "y" {
			break
		}
	}

	fmt.Fprintln(out)
	cfg.APIPort = promptInt(reader, out, "API port", 7070)

	if err := os.WriteFile(configFile, []byte(generateConfig(cfg)), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Created %s\n", configFile)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Review and edit paddock.hjson as needed")
	fmt.Fprintln(out, "  2. Run: paddock")
	fmt.Fprintln(out, "  3. Check: paddock-ctl status")
	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func promptInt(reader *bufio.Reader, out io.Writer, question string, defaultVal int) int {
	n, err := strconv.Atoi(prompt(reader, out, question, strconv.Itoa(defaultVal)))
	if err != nil {
		return defaultVal
	}
	return n
}

// escapeHJSONValue escapes a string for safe inclusion in an HJSON double-quoted value.
func escapeHJSONValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

func quote(s string) string {
	return `"` + escapeHJSONValue(s) + `"`
}

func generateConfig(cfg initConfig) string {
	var sb strings.Builder

	sb.WriteString(`{
  // =============================================================================
  // Paddock Configuration
  // =============================================================================
  //
  // This is an HJSON file (JSON with comments and relaxed syntax).
  //
  // Every app runs once per project. An app's port in a project is
  //   base_port + project index * port_stride

  // ---------------------------------------------------------------------------
  // Projects
  // ---------------------------------------------------------------------------
  projects: [
`)
	for i, p := range cfg.Projects {
		fmt.Fprintf(&sb, "    { index: %d, alias: %s, path: %s }\n", i, quote(p.Alias), quote(p.Path))
	}
	sb.WriteString(`  ]

  // ---------------------------------------------------------------------------
  // Apps
  // ---------------------------------------------------------------------------
  //
  // Every app sees the port_env and host_env variables of all apps in its
  // project. dir is relative to the project path. host_env receives
  // "localhost:<port>". env adds extra variables.
  apps: [
`)
	for _, a := range cfg.Apps {
		sb.WriteString("    {\n")
		fmt.Fprintf(&sb, "      name: %s\n", quote(a.Name))
		fmt.Fprintf(&sb, "      command: %s\n", quote(a.Command))
		fmt.Fprintf(&sb, "      base_port: %d\n", a.BasePort)
		if a.PortEnv != "" {
			fmt.Fprintf(&sb, "      port_env: %s\n", quote(a.PortEnv))
		} else {
			sb.WriteString("      // port_env: \"WEB_PORT\"\n")
		}
		sb.WriteString("      // dir: \"web\"\n")
		sb.WriteString("      // host_env: \"APP_HOST\"\n")
		sb.WriteString("    }\n")
	}
	sb.WriteString(`  ]

  // Runtime profiles, exported to apps as DOPPLER_CONFIG. The first is the default.
  profiles: ["dev", "dev_alt"]

  // Distance between the port blocks of consecutive projects.
  port_stride: 10

  // ---------------------------------------------------------------------------
  // Control API (loopback only)
  // ---------------------------------------------------------------------------
  server: {
    host: "127.0.0.1"
    port: `)
	sb.WriteString(strconv.Itoa(cfg.APIPort))
	sb.WriteString(`
  }

  // Where state and log files are kept.
  // state_file: "~/.paddock/state.json"
  // log_dir: "~/.paddock/logs"

  // log_buffer_size: 10000

  // timing: {
  //   readiness_delay: "3s"
  //   kill_timeout: "5s"
  //   stats_interval: "2s"
  // }

  // Crash reports keep the last output lines of apps that exit unexpectedly.
  // crashes: {
  //   dir: "~/.paddock/crashes"
  //   max_age: "168h"
  //   max_count: 100
  //   lines: 200
  // }

  logging: {
    level: "info"
  }
}
`)
	return sb.String()
}
