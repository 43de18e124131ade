package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// handleUpdates streams coordinator push updates as server-sent events.
// Delivery is best-effort; disconnected or slow clients fall back to
// polling /burnout.
func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.coord.Subscribe()
	defer s.coord.Unsubscribe(ch)

	s.logger.Info("listener connected")
	defer s.logger.Info("listener disconnected")

	for {
		select {
		case <-r.Context().Done():
			return
		case update := <-ch:
			payload, err := json.Marshal(update)
			if err != nil {
				s.logger.Warn("update encoding failed", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
