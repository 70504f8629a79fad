// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// paddock-ctl is a command-line tool for controlling a running paddock daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wingedpig/paddock/cmd/paddock-ctl/output"
	"github.com/wingedpig/paddock/pkg/client"
)

var version = "0.1"

var (
	apiURL       = "http://127.0.0.1:7070"
	outputFormat = "text"
)

var rootCmd = &cobra.Command{
	Use:   "paddock-ctl",
	Short: "Control a running paddock daemon",
	Long: `paddock-ctl talks to the paddock daemon over its loopback API.

Environment:
  PADDOCK_API    Base URL of the paddock API (default: http://127.0.0.1:7070)`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "paddock-ctl %s\n", version)
	},
}

func init() {
	if env := os.Getenv("PADDOCK_API"); env != "" {
		apiURL = strings.TrimSuffix(env, "/")
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "addr", apiURL, "Base URL of the paddock API")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputFormat, "Output format: text, json, or yaml")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(stopAllCmd)
	rootCmd.AddCommand(appCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(crashCmd)
	rootCmd.AddCommand(versionCmd)
}

// newClient returns an API client for the configured daemon.
func newClient() *client.Client {
	return client.New(apiURL)
}

// newPrinter returns a printer for the --output format.
func newPrinter(cmd *cobra.Command) (*output.Printer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(cmd.OutOrStdout(), format), nil
}

func main() {
	// Streaming commands stop on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
