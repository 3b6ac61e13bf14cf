package ingestion

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/tradedash/internal/domain/models"
	"github.com/guttosm/tradedash/internal/logger"
	"github.com/guttosm/tradedash/internal/storage"
)

const defaultBatchSize = 5000

// Format is the layout of an uploaded ledger file.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
)

func (f Format) String() string {
	if f == FormatXLSX {
		return "xlsx"
	}
	return "csv"
}

// DetectFormat picks the parser from the file extension. Anything that is
// not a spreadsheet is read as CSV.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// Result counts what happened to the data rows of one file.
type Result struct {
	Imported int // stored
	Skipped  int // duplicates of stored or earlier rows
	Failed   int // unparseable rows, logged and dropped
}

// row is one parsed data row. A row with err set is counted as failed.
type row struct {
	line  int
	trade models.TradeRecord
	err   error
}

// parser turns a file into rows. keyFn is the duplicate key of the format.
type parser struct {
	parse func(r io.Reader, now time.Time) ([]row, error)
	keyFn func(t models.TradeRecord) (string, bool)
}

var parsers = map[Format]parser{
	FormatCSV:  {parse: parseCSV, keyFn: csvKey},
	FormatXLSX: {parse: parseXLSX, keyFn: xlsxKey},
}

// Importer parses uploaded ledger files and stores the trades that are not
// already known.
type Importer struct {
	repo  storage.TradesRepository
	batch int
	now   func() time.Time
	log   zerolog.Logger
}

// NewImporter builds an Importer writing through repo.
func NewImporter(repo storage.TradesRepository) *Importer {
	return &Importer{
		repo:  repo,
		batch: defaultBatchSize,
		now:   time.Now,
		log:   logger.With(logger.ComponentLedger),
	}
}

// Import reads one file and stores its new trades.
//
// Duplicates are detected against the stored trades and against earlier rows
// of the same file. A malformed row is logged and counted as failed; only an
// unreadable file or a storage error fails the import.
func (im *Importer) Import(ctx context.Context, filename string, r io.Reader) (Result, error) {
	var res Result
	format := DetectFormat(filename)
	p := parsers[format]
	log := im.log.With().Str("file", filename).Str("format", format.String()).Logger()

	existing, err := im.repo.ListTrades(ctx)
	if err != nil {
		return res, fmt.Errorf("load existing trades: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		if k, ok := p.keyFn(t); ok {
			seen[k] = struct{}{}
		}
	}

	rows, err := p.parse(r, im.now().Truncate(time.Second))
	if err != nil {
		log.Error().Err(err).Msg("file unreadable")
		return res, fmt.Errorf("read %s file: %w", format, err)
	}
	if len(rows) == 0 {
		log.Warn().Msg("file has no data rows")
	}

	buf := make([]models.TradeRecord, 0, im.batch)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := im.repo.InsertTradesBatch(ctx, buf); err != nil {
			return err
		}
		res.Imported += len(buf)
		buf = buf[:0]
		return nil
	}

	for _, rw := range rows {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		if rw.err != nil {
			res.Failed++
			log.Error().Int("row", rw.line).Err(rw.err).Msg("row rejected")
			continue
		}

		key, _ := p.keyFn(rw.trade)
		if _, dup := seen[key]; dup {
			res.Skipped++
			log.Info().Int("row", rw.line).Str("key", key).Msg("trade skipped (duplicate)")
			continue
		}
		seen[key] = struct{}{}
		buf = append(buf, rw.trade)
		log.Debug().Int("row", rw.line).Str("key", key).Msg("trade accepted")

		if len(buf) >= im.batch {
			if err := flush(); err != nil {
				return res, fmt.Errorf("flush batch ending row %d: %w", rw.line, err)
			}
		}
	}

	if err := flush(); err != nil {
		return res, fmt.Errorf("final flush: %w", err)
	}

	log.Info().Int("imported", res.Imported).Int("skipped", res.Skipped).Int("failed", res.Failed).Msg("import done")
	return res, nil
}
