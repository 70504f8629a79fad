// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// paddock supervises the apps of several checkouts of one codebase and
// serves a loopback control API for paddock-ctl.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wingedpig/paddock/internal/app"
)

var version = "0.1"

var (
	configPath string
	host       string
	port       int
	debug      bool
	stopOnExit bool
)

var rootCmd = &cobra.Command{
	Use:   "paddock",
	Short: "Supervise the apps of several checkouts of one codebase",
	Long: `paddock runs the same set of apps for several checkouts (projects) of one
codebase. Each project gets its own port block, logs are captured per app,
and apps keep running across daemon restarts.

Without a subcommand it starts the daemon. Use paddock-ctl to control it.`,
	SilenceUsage: true,
	RunE:         runDaemon,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "paddock %s\n", version)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: auto-detect)")
	rootCmd.Flags().StringVar(&host, "host", "", "API host (overrides config)")
	rootCmd.Flags().IntVar(&port, "port", 0, "API port (overrides config)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&stopOnExit, "stop-on-exit", false, "Stop every app when the daemon exits")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Host:       host,
		Port:       port,
		Debug:      debug,
		StopOnExit: stopOnExit,
	})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	return application.Run(context.Background())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
