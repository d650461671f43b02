package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Vodeneev/nbaprops/internal/pkg/performance"
)

// Handlers serves the daemon status endpoints.
type Handlers struct {
	service string
	tracker *performance.Tracker
	trigger func()
}

// New builds the handlers. trigger may be nil, in which case /parse answers 503.
func New(service string, tracker *performance.Tracker, trigger func()) *Handlers {
	if tracker == nil {
		tracker = performance.NewTracker()
	}
	return &Handlers{service: service, tracker: tracker, trigger: trigger}
}

// HandlePing handles /ping endpoint
func (h *Handlers) HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong\n"))
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	LastRun string `json:"last_run,omitempty"`
	Failed  int    `json:"last_run_failed_markets"`
}

// HandleHealth handles /health endpoint. A failed last run is reported as "degraded"
// but still answers 200: the process itself is alive.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Service: h.service}
	if last := h.tracker.Last(); last != nil {
		resp.LastRun = last.FetchedAt
		resp.Failed = len(last.FailedMarkets())
		if last.Error != "" || resp.Failed > 0 {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
