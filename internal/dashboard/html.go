package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

// plColumn is the index of the profit/loss cell, colored by outcome.
const plColumn = 5

// HTMLRenderer writes views as HTML. The theme's stylesheet is computed once
// when the renderer is built.
type HTMLRenderer struct {
	tmpl  *template.Template
	style template.CSS
}

// NewHTMLRenderer parses the embedded templates and fixes the theme.
func NewHTMLRenderer(theme Theme) (*HTMLRenderer, error) {
	tmpl, err := template.New("dashboard").
		Funcs(template.FuncMap{"plColumn": func(i int) bool { return i == plColumn }}).
		ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl, style: theme.Stylesheet()}, nil
}

type page struct {
	Style template.CSS
	View  View
}

// Page writes the full document.
func (r *HTMLRenderer) Page(w io.Writer, v View) error {
	return r.tmpl.ExecuteTemplate(w, "page", page{Style: r.style, View: v})
}

// Content writes only the live part of the page, the fragment pushed to
// websocket clients.
func (r *HTMLRenderer) Content(w io.Writer, v View) error {
	return r.tmpl.ExecuteTemplate(w, "content", v)
}
