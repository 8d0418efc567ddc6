// Package render serializes message sequences into Markdown table documents
// and per-channel index documents.
package render

import (
	"strings"

	"github.com/arlberg/slack2md/internal/models"
	"github.com/arlberg/slack2md/internal/transform"
)

const tableHeader = "|Time|Icon|Name|Message|\n|---|---|---|---|\n"

// Renderer turns ordered message sequences into Markdown for one workspace.
type Renderer struct {
	users map[string]models.User
	tr    *transform.Transformer
}

// New builds a Renderer over the workspace directories.
func New(ws *models.Workspace) *Renderer {
	return &Renderer{users: ws.Users, tr: transform.New(ws)}
}

// Rows emits one newline-terminated table row per message, in input order:
// |HH:MM|icon-or-empty|name|body|. An empty sequence yields an empty
// string; the caller decides whether a document is written at all.
func (r *Renderer) Rows(msgs []models.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		meta := transform.Resolve(m, r.users)
		icon := ""
		if meta.ImageURL != "" {
			icon = "![](" + meta.ImageURL + ")"
		}
		b.WriteString("|" + meta.Time + "|" + icon + "|" + meta.Username + "|" + r.tr.Apply(m.Text) + "|\n")
	}
	return b.String()
}

// Document assembles one full log document: level-1 heading, blank line,
// the fixed table header, then the rendered rows.
func (r *Renderer) Document(title string, msgs []models.Message) string {
	return "# " + title + "\n\n" + tableHeader + r.Rows(msgs)
}

// Index assembles the per-channel index document linking every emitted
// group document, in the given (newest-first) order.
func Index(channel string, groups []string) string {
	var b strings.Builder
	b.WriteString("# " + channel + "\n\n")
	for _, g := range groups {
		b.WriteString("- [" + g + "](" + g + ".md)\n")
	}
	return b.String()
}
