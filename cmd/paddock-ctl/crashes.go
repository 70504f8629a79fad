// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
	"github.com/wingedpig/paddock/pkg/client"
)

var crashCmd = &cobra.Command{
	Use:     "crash [id]",
	Aliases: []string{"crashes"},
	Short:   "List crash reports, or show one",
	Long: `Show crash reports recorded when an app exited unexpectedly.

Without arguments, lists every report, newest first. With an ID, shows
that report with the app's last output lines.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		c := newClient()
		if len(args) == 1 {
			crash, err := c.Crashes.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.Crash(crash)
		}
		crashes, err := c.Crashes.List(cmd.Context())
		if err != nil {
			return err
		}
		return p.Crashes(crashes)
	},
}

var crashNewestCmd = &cobra.Command{
	Use:   "newest",
	Short: "Show the most recent crash report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		crash, err := newClient().Crashes.Newest(cmd.Context())
		if err != nil {
			return err
		}
		return p.Crash(crash)
	},
}

var crashDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a crash report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return crashAction(cmd, func(c *client.Client) error {
			return c.Crashes.Delete(cmd.Context(), args[0])
		}, "Deleted crash "+args[0])
	},
}

var crashClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every crash report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return crashAction(cmd, func(c *client.Client) error {
			return c.Crashes.Clear(cmd.Context())
		}, "Cleared all crashes")
	},
}

// crashAction runs op and confirms with done.
func crashAction(cmd *cobra.Command, op func(*client.Client) error, done string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	if err := op(newClient()); err != nil {
		return err
	}
	p.Message("%s", done)
	return nil
}

func init() {
	crashCmd.AddCommand(crashNewestCmd, crashDeleteCmd, crashClearCmd)
}
