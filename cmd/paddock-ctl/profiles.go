// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "List runtime profiles; the default is marked",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		profiles, err := newClient().Profiles.List(cmd.Context())
		if err != nil {
			return err
		}
		return p.Profiles(profiles)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <profile>",
	Short: "Set the profile used when start is given none",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		profiles, err := newClient().Profiles.SetDefault(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return p.Profiles(profiles)
	},
}

func init() {
	profilesCmd.AddCommand(profileSetCmd)
}
