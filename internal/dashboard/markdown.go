package dashboard

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"
)

// Markdown writes v as a markdown document: title, status quote, stat cards,
// per-symbol bullets and the trades table.
//
// Cell text is flattened to one line and pipes are escaped so user notes
// cannot break the table layout.
func Markdown(v View) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(v.Title)
	if v.Status != "" {
		doc.Blockquote(cell(v.Status))
	}

	cards := md.TableSet{Header: make([]string, len(v.Cards)), Rows: [][]string{make([]string, len(v.Cards))}}
	for i, c := range v.Cards {
		cards.Header[i] = cell(c.Label)
		cards.Rows[0][i] = cell(c.Value)
	}
	doc.Table(cards)

	if len(v.BySymbol) > 0 {
		items := make([]string, len(v.BySymbol))
		for i, s := range v.BySymbol {
			items[i] = fmt.Sprintf("%s: %d", md.Bold(cell(s.Symbol)), s.Count)
		}
		doc.BulletList(items...)
	}

	trades := md.TableSet{Header: v.Columns, Rows: make([][]string, 0, len(v.Rows))}
	for _, r := range v.Rows {
		if r.Placeholder {
			cells := make([]string, len(v.Columns))
			cells[0] = md.Italic(cell(r.Cells[0]))
			trades.Rows = append(trades.Rows, cells)
			continue
		}
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = cell(c)
		}
		trades.Rows = append(trades.Rows, cells)
	}
	doc.Table(trades)

	return doc.String()
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// MarkdownRenderer renders views for a terminal through glamour.
type MarkdownRenderer struct {
	term *glamour.TermRenderer
}

// NewMarkdownRenderer picks the glamour style of theme once.
func NewMarkdownRenderer(theme Theme, width int) (*MarkdownRenderer, error) {
	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create terminal renderer: %w", err)
	}
	return &MarkdownRenderer{term: term}, nil
}

// Render returns v styled for the terminal.
func (r *MarkdownRenderer) Render(v View) (string, error) {
	out, err := r.term.Render(Markdown(v))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
