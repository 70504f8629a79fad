// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wingedpig/paddock/pkg/client"
)

var profileFlag string

var statusCmd = &cobra.Command{
	Use:     "status [project]",
	Aliases: []string{"list", "ls"},
	Short:   "Show the apps of all projects or of one project",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		c := newClient()
		if len(args) == 1 {
			project, err := c.Projects.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.Project(*project)
		}
		projects, err := c.Projects.List(cmd.Context())
		if err != nil {
			return err
		}
		return p.Projects(projects)
	},
}

var startCmd = &cobra.Command{
	Use:   "start <project>",
	Short: "Start every app of a project",
	Long: `Start every app of a project. Apps already running in the project are
stopped first, and processes holding the project's ports are killed.

Without --profile the daemon's default profile is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printProject(cmd, func(c *client.Client) (*client.Project, error) {
			return c.Projects.Start(cmd.Context(), args[0], profileFlag)
		})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <project>",
	Short: "Stop every app of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := newClient().Projects.Stop(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if project == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s (no longer configured)\n", args[0])
			return nil
		}
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		return p.Project(*project)
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart <project>",
	Short: "Stop and start a project",
	Long:  `Stop and start a project. Without --profile the project keeps its current profile.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printProject(cmd, func(c *client.Client) (*client.Project, error) {
			return c.Projects.Restart(cmd.Context(), args[0], profileFlag)
		})
	},
}

var stopAllCmd = &cobra.Command{
	Use:   "stop-all",
	Short: "Stop every project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		projects, err := newClient().Projects.StopAll(cmd.Context())
		if err != nil {
			return err
		}
		return p.Projects(projects)
	},
}

func init() {
	startCmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Runtime profile (default: the daemon's default)")
	restartCmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Runtime profile (default: the current one)")
}

// printProject runs op and prints the project it returns.
func printProject(cmd *cobra.Command, op func(c *client.Client) (*client.Project, error)) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	project, err := op(newClient())
	if err != nil {
		return err
	}
	return p.Project(*project)
}
