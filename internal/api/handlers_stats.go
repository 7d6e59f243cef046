package api

import (
	"net/http"
)

func (s *Server) handleAdapterStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "adapter stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": s.stats.Snapshot(),
	})
}
