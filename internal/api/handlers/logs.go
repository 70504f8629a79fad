// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/wingedpig/paddock/internal/logs"
	"github.com/wingedpig/paddock/internal/service"
)

const defaultLogLines = 100

// LogHandler serves app log buffers.
type LogHandler struct {
	sup  Supervisor
	logs *logs.Aggregator
}

// NewLogHandler creates a new log handler.
func NewLogHandler(sup Supervisor, agg *logs.Aggregator) *LogHandler {
	return &LogHandler{sup: sup, logs: agg}
}

// LogsResponse is the body of a log request.
type LogsResponse struct {
	Project string      `json:"project"`
	App     string      `json:"app"`
	Query   string      `json:"query,omitempty"`
	Total   int         `json:"total"`
	Lines   []logs.Line `json:"lines"`
}

func (h *LogHandler) check(project, app string) error {
	cfg := h.sup.Config()
	if _, ok := cfg.FindProject(project); !ok {
		return fmt.Errorf("%w: %s", service.ErrUnknownProject, project)
	}
	if _, ok := cfg.FindApp(app); !ok {
		return fmt.Errorf("%w: %s", service.ErrUnknownApp, app)
	}
	return nil
}

// Get returns the last ?lines= lines of an app's buffer. With ?search= only
// matching lines are considered.
func (h *LogHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, app := vars["alias"], vars["app"]
	if err := h.check(project, app); err != nil {
		writeSupervisorError(w, err)
		return
	}

	n := intParam(r, "lines", defaultLogLines)
	query := r.URL.Query().Get("search")

	lines := h.logs.Lines(project, app)
	if query != "" {
		search := logs.NewSearch(lines, query)
		matched := make([]logs.Line, 0, len(search.Matches()))
		for _, i := range search.Matches() {
			matched = append(matched, lines[i])
		}
		lines = matched
	}
	total := len(lines)
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	WriteJSON(w, http.StatusOK, LogsResponse{
		Project: project,
		App:     app,
		Query:   query,
		Total:   total,
		Lines:   lines,
	})
}

// Stream sends log events over a websocket. ?project= and ?app= narrow the
// stream; without them every line is sent.
func (h *LogHandler) Stream(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	app := r.URL.Query().Get("app")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, cancel := h.logs.Subscribe(256)
	defer cancel()

	done := readUntilClosed(conn)
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if (project != "" && ev.Project != project) || (app != "" && ev.App != app) {
				continue
			}
			if err := conn.WriteJSON(ev); err != nil {
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
