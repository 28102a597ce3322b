package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/codescope/codescope/internal/models"
	"github.com/codescope/codescope/internal/vector"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	fns, err := s.storage.ListFunctions(r.Context())
	if err != nil {
		s.logger.Error("list functions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"functions": fns,
		"total":     len(fns),
	})
}

func (s *Server) handleGetFunction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fn, err := s.storage.GetFunction(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "function not found")
		return
	}
	s.respondJSON(w, http.StatusOK, fn)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.IndexStats())
}

func (s *Server) handleSnapshotStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.SnapshotStats(r.Context())
	if err != nil {
		s.logger.Error("stats snapshot failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	snaps, err := s.storage.ListStatsSnapshots(r.Context(), limit)
	if err != nil {
		s.logger.Error("list snapshots failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": snaps,
		"total":     len(snaps),
	})
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg vector.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.UpdateConfig(r.Context(), cfg); err != nil {
		if errors.Is(err, vector.ErrInvalidConfiguration) || errors.Is(err, vector.ErrUnsupportedAlgorithm) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("config update failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.IndexStats()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"total_vectors": stats.TotalVectors,
		"algorithm":     stats.Algorithm,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
