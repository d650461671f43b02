package handlers

import "net/http"

// HandleParse starts an ingestion run in the background.
// POST /parse
func (h *Handlers) HandleParse(w http.ResponseWriter, r *http.Request) {
	if h.trigger == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "manual runs are not enabled"})
		return
	}
	h.trigger()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}
