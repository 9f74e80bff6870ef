package api

import (
	"net/http"

	"github.com/meur/tierzen/internal/drag"
	"github.com/meur/tierzen/internal/editor"
)

// DragBegin is the request body for picking up an item
type DragBegin struct {
	ItemID string `json:"item_id"`
}

// DragMove carries the pointer position and the client's current layout
type DragMove struct {
	Pointer drag.Point    `json:"pointer"`
	Regions []drag.Region `json:"regions"`
}

// DropResult reports how a drop ended along with the resulting snapshot
type DropResult struct {
	Outcome string `json:"outcome"`
	editor.Snapshot
}

func (s *Server) handleGetDrag(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, ed.Snapshot().Drag)
}

func (s *Server) handleBeginDrag(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	var req DragBegin
	if err := decodeJSON(r, &req); err != nil || req.ItemID == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !ed.BeginDrag(req.ItemID) {
		respondError(w, http.StatusConflict, "Drag not allowed")
		return
	}

	respondJSON(w, http.StatusOK, ed.Snapshot().Drag)
}

func (s *Server) handleMoveDrag(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	var req DragMove
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	respondJSON(w, http.StatusOK, ed.Move(req.Pointer, req.Regions))
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	outcome, err := ed.Drop(r.Context())
	if err != nil {
		respondFailure(w, err, "Failed to save board")
		return
	}

	respondJSON(w, http.StatusOK, DropResult{
		Outcome:  outcome.String(),
		Snapshot: ed.Snapshot(),
	})
}

func (s *Server) handleCancelDrag(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	ed.Cancel()
	respondJSON(w, http.StatusOK, ed.Snapshot().Drag)
}
