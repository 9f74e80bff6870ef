package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meur/tierzen/internal/models"
)

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	var req models.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := ed.AddItem(r.Context(), req)
	if err != nil {
		respondFailure(w, err, "Failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	var req models.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := ed.UpdateItem(r.Context(), chi.URLParam(r, "itemID"), req)
	if err != nil {
		respondFailure(w, err, "Failed to update item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	if err := ed.DeleteItem(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		respondFailure(w, err, "Failed to delete item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleItemError(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	var req models.ItemErrorUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ed.SetItemError(r.Context(), chi.URLParam(r, "itemID"), req.HasError); err != nil {
		respondFailure(w, err, "Failed to update item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
