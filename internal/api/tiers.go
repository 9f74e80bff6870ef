package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meur/tierzen/internal/models"
)

func (s *Server) handleAddTier(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	var req models.TierCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tier, err := ed.AddTier(r.Context(), req.Name, req.Color)
	if err != nil {
		respondFailure(w, err, "Failed to add tier")
		return
	}

	respondJSON(w, http.StatusCreated, tier)
}

func (s *Server) handleUpdateTier(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	var req models.TierPatch
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ed.UpdateTier(r.Context(), chi.URLParam(r, "tierID"), req); err != nil {
		respondFailure(w, err, "Failed to update tier")
		return
	}

	respondJSON(w, http.StatusOK, ed.Snapshot().Board)
}

func (s *Server) handleDeleteTier(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	if err := ed.DeleteTier(r.Context(), chi.URLParam(r, "tierID")); err != nil {
		respondFailure(w, err, "Failed to delete tier")
		return
	}

	respondJSON(w, http.StatusOK, ed.Snapshot().Board)
}

func (s *Server) handleMoveTier(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	var req models.TierMove
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ed.MoveTier(r.Context(), chi.URLParam(r, "tierID"), req.Index); err != nil {
		respondFailure(w, err, "Failed to move tier")
		return
	}

	respondJSON(w, http.StatusOK, ed.Snapshot().Board)
}
