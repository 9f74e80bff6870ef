// Package export renders a board snapshot as an XML document or a PNG image.
package export

import (
	"io"
	"strings"

	"github.com/meur/tierzen/internal/board"
	"github.com/meur/tierzen/internal/models"
)

var xmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML replaces the five XML special characters with their named
// entities. Anything that is not a string escapes to "".
func EscapeXML(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return xmlEscaper.Replace(s)
}

// WriteXML writes the board as an XML document
func WriteXML(w io.Writer, name string, st board.State) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<tierList name="` + EscapeXML(name) + `">` + "\n")

	b.WriteString("  <tiers>\n")
	for _, t := range st.Tiers {
		b.WriteString(`    <tier id="` + EscapeXML(t.ID) +
			`" name="` + EscapeXML(t.Name) +
			`" color="` + EscapeXML(t.Color) +
			`" textColor="` + EscapeXML(t.TextColor) + `"`)
		if len(t.Items) == 0 {
			b.WriteString("/>\n")
			continue
		}
		b.WriteString(">\n")
		writeItems(&b, "      ", t.Items)
		b.WriteString("    </tier>\n")
	}
	b.WriteString("  </tiers>\n")

	if len(st.Unranked) == 0 {
		b.WriteString("  <unrankedItems/>\n")
	} else {
		b.WriteString("  <unrankedItems>\n")
		writeItems(&b, "    ", st.Unranked)
		b.WriteString("  </unrankedItems>\n")
	}
	b.WriteString("</tierList>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeItems(b *strings.Builder, indent string, items []models.Item) {
	for _, it := range items {
		b.WriteString(indent + `<item id="` + EscapeXML(it.ID) + `"`)
		if it.ImageURL != "" {
			b.WriteString(` imageUrl="` + EscapeXML(it.ImageURL) + `"`)
		}
		b.WriteString(">" + EscapeXML(it.Name) + "</item>\n")
	}
}
