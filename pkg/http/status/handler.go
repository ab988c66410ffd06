// Package status exposes a run's liveness as JSON over HTTP.
package status

import (
	"encoding/json"
	"net/http"

	"github.com/mohamed-moneim/cpusched/pkg/proc"
)

// Engine is the subset of sched.Engine the health handler reports on.
type Engine interface {
	Now() int
	Table() *proc.Table
}

// Snapshot captures the engine status returned by the handler.
type Snapshot struct {
	Now           int `json:"now"`
	ProcessCount  int `json:"processCount"`
	FinishedCount int `json:"finishedCount"`
}

// Handler renders engine liveness information as JSON.
type Handler struct {
	engine Engine
}

// NewHandler constructs a Handler that reports on engine's live state.
func NewHandler(engine Engine) *Handler {
	return &Handler{engine: engine}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	if h == nil || h.engine == nil {
		http.Error(writer, "engine unavailable", http.StatusServiceUnavailable)

		return
	}

	table := h.engine.Table()

	finished := 0

	for _, rec := range table.IterAll() {
		if rec.State == proc.Finished {
			finished++
		}
	}

	snapshot := Snapshot{
		Now:           h.engine.Now(),
		ProcessCount:  table.Count(),
		FinishedCount: finished,
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		http.Error(writer, "marshal status", http.StatusInternalServerError)

		return
	}

	writer.Header().Set("Content-Type", "application/json")
	_, _ = writer.Write(payload)
}
