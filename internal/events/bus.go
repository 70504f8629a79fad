// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrBusClosed is returned when operating on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// ErrSubscriptionNotFound is returned when unsubscribing with an unknown ID.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// MemoryBus is an in-memory Bus.
type MemoryBus struct {
	mu      sync.RWMutex
	subs    map[SubscriptionID]*subscription
	history *History
	closed  atomic.Bool
}

type subscription struct {
	pattern string
	handler Handler
	ch      chan Event // nil for handler subscriptions
}

var _ Bus = (*MemoryBus)(nil)

// NewMemoryBus creates a bus retaining up to historySize events for at most
// historyAge.
func NewMemoryBus(historySize int, historyAge time.Duration) *MemoryBus {
	return &MemoryBus{
		subs:    make(map[SubscriptionID]*subscription),
		history: NewHistory(historySize, historyAge),
	}
}

// Publish records the event and delivers it to matching subscribers.
func (bus *MemoryBus) Publish(ctx context.Context, event Event) error {
	if bus.closed.Load() {
		return ErrBusClosed
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.history.Add(event)

	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, sub := range bus.subs {
		if !Match(event.Type, sub.pattern) {
			continue
		}
		if sub.ch != nil {
			select {
			case sub.ch <- event:
			default:
				log.Debug("Event dropped, subscriber buffer full", "type", event.Type)
			}
			continue
		}
		bus.deliver(ctx, sub.handler, event)
	}
	return nil
}

// deliver runs a synchronous handler, recovering from panics.
func (bus *MemoryBus) deliver(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Event handler panic", "type", event.Type, "panic", r)
		}
	}()
	handler(ctx, event)
}

func (bus *MemoryBus) add(pattern string, sub *subscription) (SubscriptionID, error) {
	if bus.closed.Load() {
		return "", ErrBusClosed
	}
	if err := ValidatePattern(pattern); err != nil {
		return "", err
	}
	id := SubscriptionID(uuid.NewString())
	bus.mu.Lock()
	bus.subs[id] = sub
	bus.mu.Unlock()
	return id, nil
}

// Subscribe registers a synchronous handler for events matching pattern.
// Handlers must not publish or subscribe.
func (bus *MemoryBus) Subscribe(pattern string, handler Handler) (SubscriptionID, error) {
	return bus.add(pattern, &subscription{pattern: pattern, handler: handler})
}

// SubscribeChan delivers matching events on a channel of the given buffer size.
func (bus *MemoryBus) SubscribeChan(pattern string, buffer int) (<-chan Event, func(), error) {
	if buffer <= 0 {
		buffer = 100
	}
	ch := make(chan Event, buffer)
	id, err := bus.add(pattern, &subscription{pattern: pattern, ch: ch})
	if err != nil {
		return nil, nil, err
	}
	return ch, func() { _ = bus.Unsubscribe(id) }, nil
}

// Unsubscribe removes a subscription, closing its channel if it has one.
func (bus *MemoryBus) Unsubscribe(id SubscriptionID) error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	sub, ok := bus.subs[id]
	if !ok {
		return ErrSubscriptionNotFound
	}
	delete(bus.subs, id)
	if sub.ch != nil {
		close(sub.ch)
	}
	return nil
}

// History retrieves past events matching filter.
func (bus *MemoryBus) History(filter Filter) []Event {
	return bus.history.Query(filter)
}

// Close drops every subscription and closes subscriber channels.
func (bus *MemoryBus) Close() error {
	if bus.closed.Swap(true) {
		return nil
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	for id, sub := range bus.subs {
		if sub.ch != nil {
			close(sub.ch)
		}
		delete(bus.subs, id)
	}
	return nil
}
