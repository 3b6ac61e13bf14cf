package dashboard

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/guttosm/tradedash/internal/domain/models"
)

// LedgerStore holds the trade collection and the stats snapshot.
//
// Its methods must only be called from the dashboard loop. Fetches run
// elsewhere and come back as events, so a failed or slow request never
// leaves the state half-updated.
type LedgerStore struct {
	api   LedgerAPI
	fx    spawner
	log   zerolog.Logger
	state LedgerState
}

func newLedgerStore(api LedgerAPI, fx spawner, log zerolog.Logger) *LedgerStore {
	return &LedgerStore{
		api:   api,
		fx:    fx,
		log:   log,
		state: LedgerState{Trades: []models.TradeRecord{}},
	}
}

// State returns the current ledger state.
func (s *LedgerStore) State() LedgerState {
	return s.state
}

// RefreshTrades requests the full trade collection.
func (s *LedgerStore) RefreshTrades() {
	api := s.api
	s.fx.spawn("refresh_trades", func(ctx context.Context) event {
		trades, err := api.ListTrades(ctx)
		return tradesFetched{trades: trades, err: err}
	})
}

// RefreshStats requests a fresh statistics snapshot.
func (s *LedgerStore) RefreshStats() {
	api := s.api
	s.fx.spawn("refresh_stats", func(ctx context.Context) event {
		stats, err := api.GetStats(ctx)
		return statsFetched{stats: stats, err: err}
	})
}

// applyTrades replaces the collection on success and keeps it on failure.
func (s *LedgerStore) applyTrades(e tradesFetched) bool {
	if e.err != nil {
		s.log.Error().Err(e.err).Int("kept_trades", len(s.state.Trades)).Msg("refresh trades failed")
		return false
	}
	trades := e.trades
	if trades == nil {
		trades = []models.TradeRecord{}
	}
	s.state.Trades = trades
	s.log.Debug().Int("trades", len(trades)).Msg("trades replaced")
	return true
}

// applyStats replaces the snapshot on success and keeps it on failure.
func (s *LedgerStore) applyStats(e statsFetched) bool {
	if e.err != nil {
		s.log.Error().Err(e.err).Msg("refresh stats failed")
		return false
	}
	s.state.Stats = e.stats
	s.log.Debug().Int64("total_trades", e.stats.TotalTrades).Msg("stats replaced")
	return true
}
