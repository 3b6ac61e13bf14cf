package dashboard

import (
	"fmt"
	"html/template"
	"strings"
)

// Theme is the page color scheme and the matching glamour style.
type Theme struct {
	Name         string
	Page         string
	Text         string
	Panel        string
	Card         string
	HeaderRow    string
	Row          string
	AltRow       string
	Border       string
	Status       string
	Win          string
	Loss         string
	GlamourStyle string
}

var themes = map[string]Theme{
	"dark": {
		Name: "dark", Page: "#121212", Text: "#e0e0e0", Panel: "#1e1e1e", Card: "#2a2a2a",
		HeaderRow: "#333333", Row: "#2a2a2a", AltRow: "#252525", Border: "#555555",
		Status: "#4caf50", Win: "#4caf50", Loss: "#ef5350", GlamourStyle: "dark",
	},
	"light": {
		Name: "light", Page: "#fafafa", Text: "#212121", Panel: "#ffffff", Card: "#f0f0f0",
		HeaderRow: "#e0e0e0", Row: "#ffffff", AltRow: "#f5f5f5", Border: "#bdbdbd",
		Status: "#2e7d32", Win: "#2e7d32", Loss: "#c62828", GlamourStyle: "light",
	},
}

// ThemeFor returns the named theme; unknown names get the dark theme.
func ThemeFor(name string) Theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return themes["dark"]
}

// Stylesheet renders the theme as CSS.
func (t Theme) Stylesheet() template.CSS {
	var b strings.Builder
	fmt.Fprintf(&b, "body{margin:0;padding:0;background:%s;color:%s;font-family:Arial,sans-serif}\n", t.Page, t.Text)
	fmt.Fprintf(&b, ".panel{padding:16px;background:%s}\n", t.Panel)
	fmt.Fprintf(&b, ".status{margin-top:8px;min-height:1.2em;color:%s}\n", t.Status)
	fmt.Fprintf(&b, ".cards{display:flex;gap:16px;flex-wrap:wrap;margin-top:16px}\n")
	fmt.Fprintf(&b, ".card{padding:12px;border-radius:8px;min-width:120px;background:%s}\n", t.Card)
	fmt.Fprintf(&b, ".symbols{margin-top:12px}\n")
	fmt.Fprintf(&b, "table{border-collapse:collapse;width:100%%;margin-top:24px;color:%s}\n", t.Text)
	fmt.Fprintf(&b, "th{padding:8px;border:1px solid %s;background:%s}\n", t.Border, t.HeaderRow)
	fmt.Fprintf(&b, "td{padding:6px;border:1px solid %s}\n", t.Border)
	fmt.Fprintf(&b, "tr.row{background:%s}\ntr.row.alt{background:%s}\n", t.Row, t.AltRow)
	fmt.Fprintf(&b, "td.placeholder{padding:8px;text-align:center}\n")
	fmt.Fprintf(&b, "tr.win td.pl{color:%s}\ntr.loss td.pl{color:%s}\n", t.Win, t.Loss)
	return template.CSS(b.String())
}
