package ingestion

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/guttosm/tradedash/internal/domain/models"
)

// Spreadsheet columns of the first sheet; the first row is a header.
const (
	xlsxSymbol = iota
	xlsxEntry
	xlsxExit
	xlsxQuantity
	xlsxDate
	xlsxTime
)

// parseXLSX reads the first sheet. Rows missing symbol, entry, exit or
// quantity are ignored without being counted.
func parseXLSX(r io.Reader, _ time.Time) ([]row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var rows []row
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if cell(rec, xlsxSymbol) == "" || cell(rec, xlsxEntry) == "" || cell(rec, xlsxExit) == "" || cell(rec, xlsxQuantity) == "" {
			continue
		}
		t, err := sheetRowToTrade(rec)
		rows = append(rows, row{line: i + 1, trade: t, err: err})
	}
	return rows, nil
}

func sheetRowToTrade(rec []string) (models.TradeRecord, error) {
	t := models.TradeRecord{Symbol: cell(rec, xlsxSymbol), Tags: []string{}}

	nums := []struct {
		name string
		col  int
		dst  **float64
	}{
		{"entry", xlsxEntry, &t.EntryPrice},
		{"exit", xlsxExit, &t.ExitPrice},
		{"quantity", xlsxQuantity, &t.Quantity},
	}
	for _, n := range nums {
		v := parseNumber(cell(rec, n.col))
		if v == nil {
			return t, fmt.Errorf("%s %q is not a number", n.name, cell(rec, n.col))
		}
		*n.dst = v
	}

	if ts, ok := sheetTimestamp(cell(rec, xlsxDate), cell(rec, xlsxTime)); ok {
		t.Timestamp = ts
	}
	fillProfitLoss(&t)
	return t, nil
}

// sheetTimestamp combines the date and time columns. Both may be Excel
// serials or text; an unreadable date means no timestamp.
func sheetTimestamp(date, clock string) (models.Timestamp, bool) {
	if date == "" {
		return models.Timestamp{}, false
	}

	var day time.Time
	if serial, err := strconv.ParseFloat(date, 64); err == nil {
		d, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return models.Timestamp{}, false
		}
		day = d
	} else if d, err := time.Parse("2006-01-02", date); err == nil {
		day = d
	} else {
		return models.Timestamp{}, false
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var offset time.Duration
	if frac, err := strconv.ParseFloat(clock, 64); err == nil && frac >= 0 && frac < 1 {
		offset = time.Duration(frac * float64(24*time.Hour)).Round(time.Second)
	} else if c, err := time.Parse("15:04:05", clock); err == nil {
		offset = clockOffset(c)
	} else if c, err := time.Parse("15:04", clock); err == nil {
		offset = clockOffset(c)
	}
	return models.Timestamp{Time: day.Add(offset)}, true
}

func clockOffset(c time.Time) time.Duration {
	return time.Duration(c.Hour())*time.Hour + time.Duration(c.Minute())*time.Minute + time.Duration(c.Second())*time.Second
}

// xlsxKey is symbol and entry price only.
func xlsxKey(t models.TradeRecord) (string, bool) {
	return t.Symbol + ":" + formatKeyNumber(t.EntryPrice), t.Symbol != ""
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
