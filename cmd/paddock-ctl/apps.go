// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
	"github.com/wingedpig/paddock/pkg/client"
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Start, stop, or restart a single app of a project",
}

var appStartCmd = &cobra.Command{
	Use:   "start <project> <app>",
	Short: "Start one app",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printProject(cmd, func(c *client.Client) (*client.Project, error) {
			return c.Projects.StartApp(cmd.Context(), args[0], args[1], appProfileFlag)
		})
	},
}

var appStopCmd = &cobra.Command{
	Use:   "stop <project> <app>",
	Short: "Stop one app",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printProject(cmd, func(c *client.Client) (*client.Project, error) {
			return c.Projects.StopApp(cmd.Context(), args[0], args[1])
		})
	},
}

var appRestartCmd = &cobra.Command{
	Use:   "restart <project> <app>",
	Short: "Restart one app, keeping the project's profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printProject(cmd, func(c *client.Client) (*client.Project, error) {
			return c.Projects.RestartApp(cmd.Context(), args[0], args[1])
		})
	},
}

var appProfileFlag string

func init() {
	appStartCmd.Flags().StringVarP(&appProfileFlag, "profile", "p", "", "Runtime profile (default: the project's, else the daemon's default)")

	appCmd.AddCommand(appStartCmd)
	appCmd.AddCommand(appStopCmd)
	appCmd.AddCommand(appRestartCmd)
}
