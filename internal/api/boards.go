package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meur/tierzen/internal/editor"
	"github.com/meur/tierzen/internal/models"
)

const defaultBoardName = "My Tier List"

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.store.ListBoards(r.Context())
	if err != nil {
		respondFailure(w, err, "Failed to fetch boards")
		return
	}

	respondJSON(w, http.StatusOK, boards)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req models.BoardCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tmpl, err := s.template(r.Context(), req.TemplateID)
	if err != nil {
		respondFailure(w, err, "Failed to fetch template")
		return
	}
	if tmpl == nil {
		respondError(w, http.StatusBadRequest, "Unknown template")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultBoardName
	}

	b, err := s.store.CreateBoard(r.Context(), name, *tmpl)
	if err != nil {
		respondFailure(w, err, "Failed to create board")
		return
	}

	respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, ed.Snapshot().Board)
}

func (s *Server) handleGetBoardByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	b, err := s.store.GetBoardByShareCode(r.Context(), code)
	if err != nil {
		respondFailure(w, err, "Failed to fetch board")
		return
	}
	if b == nil {
		respondError(w, http.StatusNotFound, "Board not found")
		return
	}

	ed, err := s.editors.Get(r.Context(), b.ID)
	if err != nil {
		respondFailure(w, err, "Failed to fetch board")
		return
	}

	respondJSON(w, http.StatusOK, ed.Snapshot().Board)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteBoard(r.Context(), id); err != nil {
		respondFailure(w, err, "Failed to delete board")
		return
	}
	s.editors.Forget(id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	var req models.ModeUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ed.SetMode(r.Context(), req.EditMode, req.DarkMode); err != nil {
		respondFailure(w, err, "Failed to update mode")
		return
	}

	respondJSON(w, http.StatusOK, ed.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	tmpl, err := s.template(r.Context(), ed.Snapshot().Board.TemplateID)
	if err != nil {
		respondFailure(w, err, "Failed to fetch template")
		return
	}
	if tmpl == nil {
		def := models.DefaultTemplate()
		tmpl = &def
	}

	if err := ed.Reset(r.Context(), *tmpl); err != nil {
		respondFailure(w, err, "Failed to reset board")
		return
	}

	respondJSON(w, http.StatusOK, ed.Snapshot().Board)
}

// editor resolves the {id} board to its editor, writing the error response
// when it cannot.
func (s *Server) editor(w http.ResponseWriter, r *http.Request) (*editor.Editor, bool) {
	ed, err := s.editors.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, err, "Failed to fetch board")
		return nil, false
	}
	return ed, true
}
