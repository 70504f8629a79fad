// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-memory lifecycle event bus for paddock.
package events

import (
	"context"
	"time"
)

// Event represents an immutable event record.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Project   string                 `json:"project,omitempty"`
	App       string                 `json:"app,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Handler processes received events.
type Handler func(ctx context.Context, event Event)

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// Filter for querying event history.
type Filter struct {
	Types   []string  // Event types to match (supports wildcards)
	Project string    // Filter by project alias
	Since   time.Time // Events after this time
	Limit   int       // Most recent N
}

// Bus is the event pub/sub system.
type Bus interface {
	// Publish records the event and delivers it to matching subscribers.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a synchronous handler for events matching pattern.
	Subscribe(pattern string, handler Handler) (SubscriptionID, error)

	// SubscribeChan delivers matching events on a buffered channel. Events
	// are dropped when the channel is full. The returned func unsubscribes
	// and closes the channel.
	SubscribeChan(pattern string, buffer int) (<-chan Event, func(), error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History retrieves past events matching filter, oldest first.
	History(filter Filter) []Event

	// Close shuts down the bus.
	Close() error
}

// Event types
const (
	AppStarting = "app.starting"
	AppRunning  = "app.running"
	AppStopped  = "app.stopped"
	AppCrashed  = "app.crashed" // Exited non-zero or failed to spawn
	AppAdopted  = "app.adopted"

	ProjectStarted = "project.started"
	ProjectStopped = "project.stopped"

	PortsBusy = "ports.busy"

	ConfigReloaded = "config.reloaded"
)
