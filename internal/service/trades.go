package service

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/guttosm/tradedash/internal/domain/models"
	"github.com/guttosm/tradedash/internal/ingestion"
	"github.com/guttosm/tradedash/internal/storage"
)

// TradesService is the ledger's business layer: listing, statistics and
// file import.
type TradesService interface {
	ListTrades(ctx context.Context) ([]models.TradeRecord, error)
	Stats(ctx context.Context) (models.StatsSnapshot, error)
	Import(ctx context.Context, filename string, r io.Reader) (ingestion.Result, error)
}

// Importer stores the trades of an uploaded file. *ingestion.Importer implements it.
type Importer interface {
	Import(ctx context.Context, filename string, r io.Reader) (ingestion.Result, error)
}

type tradesService struct {
	repo     storage.TradesRepository
	importer Importer
}

func NewTradesService(repo storage.TradesRepository, importer Importer) TradesService {
	return &tradesService{repo: repo, importer: importer}
}

func (s *tradesService) ListTrades(ctx context.Context) ([]models.TradeRecord, error) {
	return s.repo.ListTrades(ctx)
}

func (s *tradesService) Stats(ctx context.Context) (models.StatsSnapshot, error) {
	trades, err := s.repo.ListTrades(ctx)
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	return ComputeStats(trades), nil
}

func (s *tradesService) Import(ctx context.Context, filename string, r io.Reader) (ingestion.Result, error) {
	return s.importer.Import(ctx, filename, r)
}

var hundred = decimal.NewFromInt(100)

// ComputeStats summarises trades.
//
// Sum and average cover only trades with a profitLoss; the win rate is
// winning trades over all trades. Every value is zero for an empty ledger.
func ComputeStats(trades []models.TradeRecord) models.StatsSnapshot {
	stats := models.StatsSnapshot{
		TotalTrades: int64(len(trades)),
		BySymbol:    map[string]int64{},
	}
	if len(trades) == 0 {
		return stats
	}

	sum := decimal.Zero
	var withPL, wins int64
	for _, t := range trades {
		if t.Symbol != "" {
			stats.BySymbol[t.Symbol]++
		}
		if t.ProfitLoss == nil {
			continue
		}
		pl := decimal.NewFromFloat(*t.ProfitLoss)
		sum = sum.Add(pl)
		withPL++
		if pl.IsPositive() {
			wins++
		}
	}

	stats.SumProfitLoss = sum.InexactFloat64()
	if withPL > 0 {
		stats.AvgProfitLoss = sum.Div(decimal.NewFromInt(withPL)).InexactFloat64()
	}
	stats.WinRatePercent = decimal.NewFromInt(wins).Mul(hundred).Div(decimal.NewFromInt(stats.TotalTrades)).InexactFloat64()
	return stats
}
