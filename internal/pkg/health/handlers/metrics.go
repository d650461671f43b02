package handlers

import "net/http"

// HandleMetrics handles /metrics endpoint
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Metrics())
}

// HandleLastRun handles /runs/last: the full report of the latest run, 404 before the first one.
func (h *Handlers) HandleLastRun(w http.ResponseWriter, r *http.Request) {
	last := h.tracker.Last()
	if last == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run finished yet"})
		return
	}
	writeJSON(w, http.StatusOK, last)
}
