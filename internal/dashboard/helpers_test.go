package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guttosm/tradedash/internal/domain/dto"
	"github.com/guttosm/tradedash/internal/domain/models"
)

type fakeAPI struct {
	mu         sync.Mutex
	trades     []models.TradeRecord
	tradesErr  error
	stats      models.StatsSnapshot
	statsErr   error
	uploadResp *dto.UploadResponse
	uploadErr  error
	uploaded   []string

	listCalls   atomic.Int32
	statsCalls  atomic.Int32
	uploadCalls atomic.Int32
}

func (f *fakeAPI) ListTrades(context.Context) ([]models.TradeRecord, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trades, f.tradesErr
}

func (f *fakeAPI) GetStats(context.Context) (models.StatsSnapshot, error) {
	f.statsCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, f.statsErr
}

func (f *fakeAPI) UploadTrades(_ context.Context, name string, _ []byte) (*dto.UploadResponse, error) {
	f.uploadCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, name)
	return f.uploadResp, f.uploadErr
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// syncSpawner runs calls inline and keeps their results for the test to apply.
type syncSpawner struct {
	ops    []string
	events []event
}

func (s *syncSpawner) spawn(op string, call func(ctx context.Context) event) {
	s.ops = append(s.ops, op)
	s.events = append(s.events, call(context.Background()))
}

type countingRefresher struct {
	trades, stats int
}

func (r *countingRefresher) RefreshTrades() { r.trades++ }
func (r *countingRefresher) RefreshStats()  { r.stats++ }

func sampleTrades() []models.TradeRecord {
	return []models.TradeRecord{
		{ID: 1, Symbol: "AAPL", EntryPrice: models.Float(100), ExitPrice: models.Float(110), Quantity: models.Float(5), ProfitLoss: models.Float(50)},
		{ID: 2, Symbol: "MSFT", EntryPrice: models.Float(200), ExitPrice: models.Float(190), Quantity: models.Float(1), ProfitLoss: models.Float(-10)},
		{ID: 3, Symbol: "TSLA"},
	}
}

func startDashboard(t *testing.T, api LedgerAPI) *Dashboard {
	t.Helper()
	d := New(api, WithCatalog(CatalogFor("en")))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errc
	})
	return d
}

func waitFor(t *testing.T, d *Dashboard, what string, cond func(Frame) bool) Frame {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		f, err := d.Current(ctx)
		cancel()
		if err == nil && cond(f) {
			return f
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s (last err=%v, frame=%+v)", what, err, f.State)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitCount(t *testing.T, what string, c *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s=%d, got %d", what, want, c.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
