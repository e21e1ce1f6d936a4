package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/cardcreator/internal/cards"
	"codeberg.org/snonux/cardcreator/internal/lookup"
)

// maxBodySize limits JSON request bodies
const maxBodySize = 1 << 20

// CardsRequest is the body of POST /api/cards
type CardsRequest struct {
	Word           string              `json:"word"`
	Definitions    []cards.Definition  `json:"definitions"`
	DefinitionMask cards.SelectionMask `json:"definitionMask"`
	Examples       []cards.Example     `json:"examples"`
	ExampleMask    cards.SelectionMask `json:"exampleMask"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// lookupStatus maps lookup errors to HTTP status codes
func lookupStatus(err error) int {
	switch {
	case errors.Is(err, lookup.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cards.ErrEmptyWord):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleAPILookup(w http.ResponseWriter, r *http.Request) {
	result, err := s.cfg.Lookup.Lookup(r.Context(), r.PathValue("word"))
	if err != nil {
		status := lookupStatus(err)
		if status == http.StatusInternalServerError {
			s.log.Error("lookup failed", zap.Error(err))
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAPICards(w http.ResponseWriter, r *http.Request) {
	var req CardsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	word, err := cards.ValidateWord(req.Word)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := cards.Assemble(word, req.Definitions, req.DefinitionMask, req.Examples, req.ExampleMask)
	if errors.Is(err, cards.ErrNoSelection) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAPIAddCards(w http.ResponseWriter, r *http.Request) {
	var records []cards.Record
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := s.cfg.Store.Append(records); err != nil {
		s.log.Error("saving cards failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("saved cards", zap.Int("count", len(records)))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Exporter == nil {
		http.Error(w, "export is not configured", http.StatusInternalServerError)
		return
	}

	path, err := s.cfg.Exporter.Export(r.Context())
	if err != nil {
		s.log.Error("export failed", zap.Error(err))
		http.Error(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(path))
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of one component
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Version:   s.cfg.Version,
		Timestamp: time.Now(),
	}
	status := http.StatusOK

	if len(s.cfg.Components) > 0 {
		resp.Components = make(map[string]CompStatus, len(s.cfg.Components))
	}
	for name, p := range s.cfg.Components {
		start := time.Now()
		if err := p.Ping(ctx); err != nil {
			resp.Components[name] = CompStatus{Status: "down"}
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}

	writeJSON(w, status, resp)
}
