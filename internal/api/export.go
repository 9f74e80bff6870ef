package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/meur/tierzen/internal/board"
	"github.com/meur/tierzen/internal/export"
)

type writer func(w *bytes.Buffer, name string, st board.State) error

func (s *Server) handleExportXML(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "application/xml", "xml", func(buf *bytes.Buffer, name string, st board.State) error {
		return export.WriteXML(buf, name, st)
	})
}

func (s *Server) handleExportPNG(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "image/png", "png", func(buf *bytes.Buffer, name string, st board.State) error {
		return export.WritePNG(buf, name, st)
	})
}

// export renders into a buffer first so a failure can still be reported as JSON
func (s *Server) export(w http.ResponseWriter, r *http.Request, contentType, ext string, write writer) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}

	snap := ed.Snapshot()
	st := board.State{Tiers: snap.Board.Tiers, Unranked: snap.Board.Unranked}

	var buf bytes.Buffer
	if err := write(&buf, snap.Board.Name, st); err != nil {
		respondFailure(w, err, "Failed to export board")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename(snap.Board.Name, ext)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func filename(name, ext string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, name)
	if base == "" {
		base = "tierlist"
	}
	return base + "." + ext
}
