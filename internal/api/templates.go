package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meur/tierzen/internal/models"
)

func (s *Server) handleGetTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.GetTemplates(r.Context())
	if err != nil {
		respondFailure(w, err, "Failed to fetch templates")
		return
	}

	hasDefault := false
	for _, t := range templates {
		if t.ID == models.DefaultTemplateID {
			hasDefault = true
			break
		}
	}
	if !hasDefault {
		templates = append([]models.Template{models.DefaultTemplate()}, templates...)
	}

	respondJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.template(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		respondFailure(w, err, "Failed to fetch template")
		return
	}
	if tmpl == nil {
		respondError(w, http.StatusNotFound, "Template not found")
		return
	}

	respondJSON(w, http.StatusOK, tmpl)
}

// template resolves a template id. The built-in default is served when it
// has not been seeded; an empty id means the default.
func (s *Server) template(ctx context.Context, id string) (*models.Template, error) {
	if id == "" {
		id = models.DefaultTemplateID
	}

	tmpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl == nil && id == models.DefaultTemplateID {
		def := models.DefaultTemplate()
		return &def, nil
	}
	return tmpl, nil
}
