package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kingrea/blueprint/internal/artifact"
	"github.com/kingrea/blueprint/internal/workflow/engine"
)

// ProtocolVersion is reported by /health.
const ProtocolVersion = 1

type healthResponse struct {
	Status        string `json:"status"`
	Version       int    `json:"version"`
	DocumentID    string `json:"document_id"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type stepDataRequest struct {
	Data json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error string        `json:"error"`
	State *engine.State `json:"state,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Version:       ProtocolVersion,
		DocumentID:    s.machine.State().DocumentID,
		UptimeSeconds: s.uptimeSeconds(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.machine.State())
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.machine.Progress())
}

func (s *Server) handleActions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"actions": s.machine.AllowedActions()})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	reply, err := s.session.Handle(r.Context(), req.Text)
	if err != nil {
		s.writeMachineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleStepData(w http.ResponseWriter, r *http.Request) {
	var req stepDataRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Data) == 0 || string(req.Data) == "null" {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}
	var data any
	if err := json.Unmarshal(req.Data, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid data")
		return
	}
	state, err := s.machine.UpdateStepData(data)
	if err != nil {
		s.writeMachineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	state, err := s.machine.Advance(r.Context())
	if err != nil {
		s.writeStateError(w, err, state)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleCompleteStage(w http.ResponseWriter, r *http.Request) {
	state, err := s.machine.CompleteStage(r.Context())
	if err != nil {
		s.writeStateError(w, err, state)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	state, err := s.machine.ResetToStageBeginning(r.Context())
	if err != nil {
		s.writeMachineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.machine.ExportDocument())
}

func (s *Server) handleExportMarkdown(w http.ResponseWriter, _ *http.Request) {
	doc := s.machine.ExportDocument()
	data, err := artifact.RenderMarkdown(doc)
	if err != nil {
		s.logger.Error("markdown export failed", "document_id", doc.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.ID+".md"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleEvents streams machine events as server-sent events until the
// client disconnects or the router closes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	sub := s.machine.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(s.settings.Heartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, payload)
			flusher.Flush()
		}
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload exceeds limit")
			return false
		}
		writeError(w, http.StatusBadRequest, "unable to read body")
		return false
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func (s *Server) writeStateError(w http.ResponseWriter, err error, state engine.State) {
	if errors.Is(err, engine.ErrCannotAdvance) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "cannot proceed yet", State: &state})
		return
	}
	s.writeMachineError(w, err)
}

func (s *Server) writeMachineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidData):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrCannotAdvance),
		errors.Is(err, engine.ErrStepTakesNoData),
		errors.Is(err, engine.ErrNotStarted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("api request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
