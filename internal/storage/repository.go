package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/guttosm/tradedash/internal/domain/models"
)

// TradesRepository defines contract for DB operations.
type TradesRepository interface {
	ListTrades(ctx context.Context) ([]models.TradeRecord, error)
	InsertTradesBatch(ctx context.Context, trades []models.TradeRecord) error
}

type tradesRepository struct {
	db *sql.DB
}

func NewTradesRepository(db *sql.DB) TradesRepository {
	return &tradesRepository{db: db}
}

const listTradesQuery = `
	SELECT id, symbol, entry_price, exit_price, quantity, profit_loss, traded_at, tags, notes
	FROM trades
	ORDER BY id`

// ListTrades returns every stored trade ordered by id.
func (r *tradesRepository) ListTrades(ctx context.Context) ([]models.TradeRecord, error) {
	rows, err := r.db.QueryContext(ctx, listTradesQuery)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	trades := []models.TradeRecord{}
	for rows.Next() {
		var (
			t                            models.TradeRecord
			entry, exit, qty, profitLoss sql.NullFloat64
			tradedAt                     sql.NullTime
			tags                         pq.StringArray
		)
		if err := rows.Scan(&t.ID, &t.Symbol, &entry, &exit, &qty, &profitLoss, &tradedAt, &tags, &t.Notes); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.EntryPrice = fromNullFloat(entry)
		t.ExitPrice = fromNullFloat(exit)
		t.Quantity = fromNullFloat(qty)
		t.ProfitLoss = fromNullFloat(profitLoss)
		if tradedAt.Valid {
			t.Timestamp = models.Timestamp{Time: tradedAt.Time}
		}
		t.Tags = []string(tags)
		if t.Tags == nil {
			t.Tags = []string{}
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return trades, nil
}

// InsertTradesBatch inserts trades with COPY in a single transaction.
// Ids are assigned by the database; the ID field of the input is ignored.
func (r *tradesRepository) InsertTradesBatch(ctx context.Context, trades []models.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"trades",
		"symbol",
		"entry_price",
		"exit_price",
		"quantity",
		"profit_loss",
		"traded_at",
		"tags",
		"notes",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, t := range trades {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		if _, err := stmt.ExecContext(ctx,
			t.Symbol,
			toNullFloat(t.EntryPrice),
			toNullFloat(t.ExitPrice),
			toNullFloat(t.Quantity),
			toNullFloat(t.ProfitLoss),
			toNullTime(t.Timestamp.Time),
			pq.Array(tags),
			t.Notes,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float(v.Float64)
}

func toNullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func toNullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
