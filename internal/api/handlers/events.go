// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wingedpig/paddock/internal/events"
)

const (
	pingInterval = 54 * time.Second
	pongWait     = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// readUntilClosed drains client messages and closes the returned channel
// when the connection goes away.
func readUntilClosed(conn *websocket.Conn) <-chan struct{} {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}

// EventHandler handles event-related API requests.
type EventHandler struct {
	bus events.Bus
}

// NewEventHandler creates a new event handler.
func NewEventHandler(bus events.Bus) *EventHandler {
	return &EventHandler{bus: bus}
}

// History returns the event history.
func (h *EventHandler) History(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := events.Filter{
		Types:   query["type"],
		Project: query.Get("project"),
		Limit:   intParam(r, "limit", 0),
	}
	if sinceStr := query.Get("since"); sinceStr != "" {
		if t, err := time.Parse(time.RFC3339, sinceStr); err == nil {
			filter.Since = t
		}
	}

	WriteJSON(w, http.StatusOK, h.bus.History(filter))
}

// WebSocket streams events matching ?pattern= (default all).
func (h *EventHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}
	if err := events.ValidatePattern(pattern); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, cancel, err := h.bus.SubscribeChan(pattern, 100)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	defer cancel()

	done := readUntilClosed(conn)
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
