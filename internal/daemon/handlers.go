package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/coordinator"
	"github.com/runnerr0/burnwatch/internal/state"
)

// eventEnvelope is the discriminated message posted by collaborators.
type eventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// statusResponse is the minimal acknowledgment body.
type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encoding failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, statusResponse{Status: "error", Error: err.Error()})
}

// handleEvents decodes the event envelope and hands it to the coordinator.
// Unknown event types are a contract error between collaborators and are
// reported explicitly rather than swallowed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxRequestSize))
	}

	var envelope eventEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode event: %w", err))
		return
	}

	event, err := decodeEvent(envelope)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	// The fallback video-activity path reports whether tracking swallowed
	// the report, since its producer retries through this response.
	if _, ok := event.(coordinator.VideoActivity); ok && !s.state.TrackingEnabled(r.Context()) {
		s.writeJSON(w, http.StatusOK, statusResponse{Status: "ignored"})
		return
	}

	s.coord.Ingest(event)
	s.writeJSON(w, http.StatusAccepted, statusResponse{Status: "processed"})
}

// decodeEvent maps an envelope onto the coordinator's event union.
func decodeEvent(envelope eventEnvelope) (coordinator.Event, error) {
	switch envelope.Type {
	case "tab_created":
		var ev coordinator.TabCreated
		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return ev, nil
	case "tab_switched":
		var ev coordinator.TabSwitched
		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return ev, nil
	case "youtube_activity":
		var ev coordinator.VideoActivity
		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return ev, nil
	case "user_interaction":
		var ev coordinator.UserInteraction
		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return ev, nil
	case "start_break":
		var ev coordinator.StartBreak
		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown request type: %q", envelope.Type)
	}
}

func (s *Server) handleBurnout(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coord.BurnoutData(r.Context()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	data := s.coord.Refresh(r.Context())
	code := http.StatusOK
	if data.Status == "error" {
		code = http.StatusConflict
	}
	s.writeJSON(w, code, data)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state.CurrentState(r.Context()).Settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var patch state.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode settings: %w", err))
		return
	}
	if err := s.state.UpdateSettings(r.Context(), patch); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state.CurrentState(r.Context()).Settings)
}

type trackingBody struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleGetTracking(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, trackingBody{Enabled: s.state.TrackingEnabled(r.Context())})
}

func (s *Server) handlePutTracking(w http.ResponseWriter, r *http.Request) {
	var body trackingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode tracking flag: %w", err))
		return
	}
	if err := s.state.SetTrackingEnabled(r.Context(), body.Enabled); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trackingBody{Enabled: body.Enabled})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := s.state.ExportData(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, export)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.state.ResetData(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "reset"})
}
