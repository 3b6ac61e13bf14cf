package dashboard

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LoadState fetches trades and stats once, concurrently, without running the
// loop. A failed fetch leaves its slice empty, as it would be before the
// first successful refresh.
//
// Parameters:
//   - ctx (context.Context): cancels both fetches.
//   - api (LedgerAPI): the ledger service.
//   - log (zerolog.Logger): receives fetch failures.
//
// Returns:
//   - State: ledger state only; the upload state is always empty.
func LoadState(ctx context.Context, api LedgerAPI, log zerolog.Logger) State {
	var (
		trades tradesFetched
		stats  statsFetched
		g      errgroup.Group
	)
	g.Go(func() error {
		trades.trades, trades.err = api.ListTrades(ctx)
		return nil
	})
	g.Go(func() error {
		stats.stats, stats.err = api.GetStats(ctx)
		return nil
	})
	_ = g.Wait()

	store := newLedgerStore(api, nil, log)
	store.applyTrades(trades)
	store.applyStats(stats)
	return State{Ledger: store.State()}
}
