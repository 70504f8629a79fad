// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/wingedpig/paddock/cmd/paddock-ctl/output"
	"github.com/wingedpig/paddock/pkg/client"
)

var (
	eventLimit   int
	eventTypes   []string
	eventProject string
	eventSince   string
	eventWatch   bool
	eventPattern string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent lifecycle events",
	Long: `Show recent lifecycle events such as app.crashed or ports.busy.

With --watch, events matching --pattern are streamed until interrupted.`,
	Example: `  paddock-ctl events -n 20
  paddock-ctl events --type 'app.*' --project main --since 1h
  paddock-ctl events --watch --pattern app.crashed`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().IntVarP(&eventLimit, "limit", "n", 50, "Number of events")
	eventsCmd.Flags().StringSliceVarP(&eventTypes, "type", "t", nil, "Event types, wildcards allowed (repeatable)")
	eventsCmd.Flags().StringVar(&eventProject, "project", "", "Only events of this project")
	eventsCmd.Flags().StringVar(&eventSince, "since", "", "Only events after this time (e.g. 30m, 6:30am, 2026-10-16)")
	eventsCmd.Flags().BoolVarP(&eventWatch, "watch", "w", false, "Stream new events")
	eventsCmd.Flags().StringVar(&eventPattern, "pattern", "*", "Event pattern to watch")
}

func runEvents(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	c := newClient()

	if eventWatch {
		var printErr error
		err := c.Events.Watch(cmd.Context(), eventPattern, func(ev client.Event) {
			if printErr == nil {
				printErr = p.Event(ev)
			}
		})
		if err != nil {
			return err
		}
		return printErr
	}

	opts := &client.ListOptions{
		Limit:   eventLimit,
		Types:   eventTypes,
		Project: eventProject,
	}
	if eventSince != "" {
		since, err := output.ParseSince(eventSince, time.Now())
		if err != nil {
			return err
		}
		opts.Since = since
	}

	events, err := c.Events.List(cmd.Context(), opts)
	if err != nil {
		return err
	}
	return p.Events(events)
}
