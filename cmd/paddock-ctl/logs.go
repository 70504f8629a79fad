// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
	"github.com/wingedpig/paddock/pkg/client"
)

var (
	logLines  int
	logSearch string
	logFollow bool
)

var logsCmd = &cobra.Command{
	Use:   "logs <project> <app>",
	Short: "Show an app's captured output",
	Long: `Show the tail of an app's captured stdout and stderr.

With --follow, new lines are streamed until interrupted.`,
	Example: `  paddock-ctl logs main api -n 50
  paddock-ctl logs main api --search panic
  paddock-ctl logs main api -f`,
	Args: cobra.ExactArgs(2),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logLines, "lines", "n", 100, "Number of lines")
	logsCmd.Flags().StringVarP(&logSearch, "search", "s", "", "Only lines containing this text (case-insensitive)")
	logsCmd.Flags().BoolVarP(&logFollow, "follow", "f", false, "Stream new lines")
}

func runLogs(cmd *cobra.Command, args []string) error {
	project, app := args[0], args[1]
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	c := newClient()

	logs, err := c.Logs.Get(cmd.Context(), project, app, &client.LogOptions{
		Lines:  logLines,
		Search: logSearch,
	})
	if err != nil {
		return err
	}
	if err := p.Logs(logs); err != nil {
		return err
	}
	if !logFollow {
		return nil
	}

	var printErr error
	err = c.Logs.Stream(cmd.Context(), project, app, func(ev client.LogEvent) {
		if printErr == nil {
			printErr = p.LogEvent(ev)
		}
	})
	if err != nil {
		return err
	}
	return printErr
}
