package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/guttosm/tradedash/internal/domain/models"
	"github.com/guttosm/tradedash/internal/rating"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	absent          = "-"
)

// View is the rendered dashboard, independent of the output format.
type View struct {
	Title    string        `json:"title"`
	Upload   UploadForm    `json:"upload"`
	Status   string        `json:"status"`
	Cards    []StatCard    `json:"cards"`
	BySymbol []SymbolCount `json:"bySymbol,omitempty"`
	Columns  []string      `json:"columns"`
	Rows     []Row         `json:"rows"`
}

// UploadForm describes the file picker and its submit button.
type UploadForm struct {
	Action        string `json:"action"`
	Field         string `json:"field"`
	Accept        string `json:"accept"`
	Label         string `json:"label"`
	Button        string `json:"button"`
	SelectedLabel string `json:"selectedLabel"`
	Selected      string `json:"selected,omitempty"`
	RefreshAction string `json:"refreshAction"`
	RefreshButton string `json:"refreshButton"`
}

// StatCard is one of the four summary numbers.
type StatCard struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type SymbolCount struct {
	Symbol string `json:"symbol"`
	Count  int64  `json:"count"`
}

// Row is one table row. A placeholder row has a single cell spanning Span
// columns. Alt only drives the zebra striping.
type Row struct {
	ID          int64    `json:"id,omitempty"`
	Cells       []string `json:"cells"`
	Alt         bool     `json:"alt"`
	Outcome     string   `json:"outcome,omitempty"`
	Placeholder bool     `json:"placeholder,omitempty"`
	Span        int      `json:"span,omitempty"`
}

// Render projects s into a View. It has no side effects and returns equal
// views for equal inputs.
func Render(s State, c Catalog) View {
	return View{
		Title:    c.Title,
		Upload:   uploadForm(s.Upload, c),
		Status:   s.Upload.StatusMessage,
		Cards:    statCards(s.Ledger.Stats, c),
		BySymbol: bySymbol(s.Ledger.Stats.BySymbol),
		Columns:  append([]string(nil), c.Columns...),
		Rows:     tradeRows(s.Ledger.Trades, c),
	}
}

func uploadForm(u UploadState, c Catalog) UploadForm {
	f := UploadForm{
		Action:        "/upload",
		Field:         "file",
		Accept:        ".csv,.xlsx",
		Label:         c.FileLabel,
		Button:        c.UploadButton,
		SelectedLabel: c.SelectedLabel,
		RefreshAction: "/refresh",
		RefreshButton: c.RefreshButton,
	}
	if u.Selected != nil {
		f.Selected = u.Selected.Name
	}
	return f
}

func statCards(s models.StatsSnapshot, c Catalog) []StatCard {
	return []StatCard{
		{Key: "totalTrades", Label: c.TotalTrades, Value: strconv.FormatInt(s.TotalTrades, 10)},
		{Key: "sumProfitLoss", Label: c.SumProfitLoss, Value: fmt.Sprintf("%.2f", finite(s.SumProfitLoss))},
		{Key: "avgProfitLoss", Label: c.AvgProfitLoss, Value: fmt.Sprintf("%.2f", finite(s.AvgProfitLoss))},
		{Key: "winRatePercent", Label: c.WinRate, Value: fmt.Sprintf("%.1f%%", finite(s.WinRatePercent))},
	}
}

func bySymbol(counts map[string]int64) []SymbolCount {
	if len(counts) == 0 {
		return nil
	}
	out := make([]SymbolCount, 0, len(counts))
	for sym, n := range counts {
		out = append(out, SymbolCount{Symbol: sym, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func tradeRows(trades []models.TradeRecord, c Catalog) []Row {
	if len(trades) == 0 {
		return []Row{{Cells: []string{c.NoTrades}, Placeholder: true, Span: len(c.Columns)}}
	}
	rows := make([]Row, len(trades))
	for i, t := range trades {
		outcome := rating.DetermineWinLoss(t)
		level := rating.CalculateLevel(t)
		rows[i] = Row{
			ID: t.ID,
			Cells: []string{
				strconv.FormatInt(t.ID, 10),
				t.Symbol,
				number(t.EntryPrice),
				number(t.ExitPrice),
				number(t.Quantity),
				money(t.ProfitLoss),
				timestamp(t.Timestamp),
				strings.Join(t.Tags, ", "),
				t.Notes,
				outcome.Icon() + " " + level.Icon() + " " + level.String(),
			},
			Alt:     i%2 == 1,
			Outcome: strings.ToLower(outcome.String()),
		}
	}
	return rows
}

func number(v *float64) string {
	if v == nil {
		return absent
	}
	return strconv.FormatFloat(finite(*v), 'f', -1, 64)
}

func money(v *float64) string {
	if v == nil {
		return absent
	}
	return fmt.Sprintf("%.2f", finite(*v))
}

func timestamp(ts models.Timestamp) string {
	if ts.IsZero() {
		return absent
	}
	return ts.Format(timestampLayout)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
