package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/tradedash/internal/domain/models"
)

// CSV columns, looked up by header name in any order:
//
//	symbol,entryPrice,exitPrice,quantity,profitLoss,timestamp,tags,notes
const (
	colSymbol     = "symbol"
	colEntryPrice = "entryPrice"
	colExitPrice  = "exitPrice"
	colQuantity   = "quantity"
	colProfitLoss = "profitLoss"
	colTimestamp  = "timestamp"
	colTags       = "tags"
	colNotes      = "notes"
)

const keyTimeLayout = "2006-01-02T15:04:05.999999999"

// parseCSV reads a header-indexed CSV file. An empty file yields no rows.
func parseCSV(r io.Reader, now time.Time) ([]row, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		idx[unquote(h)] = i
	}
	if _, ok := idx[colSymbol]; !ok {
		return nil, fmt.Errorf("header has no %q column", colSymbol)
	}

	var rows []row
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rows = append(rows, row{line: line, err: err})
				continue
			}
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		t, err := recordToTrade(rec, idx, now)
		rows = append(rows, row{line: line, trade: t, err: err})
	}
	return rows, nil
}

// recordToTrade maps one CSV record. Unparseable numbers count as absent;
// a missing or unparseable timestamp becomes now.
func recordToTrade(rec []string, idx map[string]int, now time.Time) (models.TradeRecord, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return unquote(rec[i])
	}

	t := models.TradeRecord{
		Symbol:     get(colSymbol),
		EntryPrice: parseNumber(get(colEntryPrice)),
		ExitPrice:  parseNumber(get(colExitPrice)),
		Quantity:   parseNumber(get(colQuantity)),
		ProfitLoss: parseNumber(get(colProfitLoss)),
		Tags:       splitTags(get(colTags)),
		Notes:      get(colNotes),
	}
	if t.Symbol == "" {
		return t, errors.New("symbol is empty")
	}

	t.Timestamp = models.Timestamp{Time: now}
	if s := get(colTimestamp); s != "" {
		if ts, err := models.ParseTimestamp(s); err == nil {
			t.Timestamp = ts
		}
	}

	fillProfitLoss(&t)
	return t, nil
}

// csvKey is symbol, entry price and timestamp. Trades lacking one of them
// never match a stored trade.
func csvKey(t models.TradeRecord) (string, bool) {
	key := t.Symbol + ":" + formatKeyNumber(t.EntryPrice) + ":" + formatKeyTime(t.Timestamp)
	return key, t.Symbol != "" && t.EntryPrice != nil && !t.Timestamp.IsZero()
}

func fillProfitLoss(t *models.TradeRecord) {
	if t.ProfitLoss == nil && t.EntryPrice != nil && t.ExitPrice != nil && t.Quantity != nil {
		t.ProfitLoss = models.Float((*t.ExitPrice - *t.EntryPrice) * *t.Quantity)
	}
}

// parseNumber accepts a decimal comma.
func parseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

// splitTags splits on ';', '|' or ',' and keeps the first occurrence of each tag.
func splitTags(s string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' || r == ',' }) {
		tag := unquote(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimSpace(s)
}

func formatKeyNumber(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatKeyTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return "null"
	}
	return ts.UTC().Format(keyTimeLayout)
}
