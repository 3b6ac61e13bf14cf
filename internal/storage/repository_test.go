package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/guttosm/tradedash/internal/domain/models"
)

type dummyErr struct{}

func (dummyErr) Error() string { return "dummy" }

func newMockRepo(t *testing.T) (*tradesRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	repo := &tradesRepository{db: db}
	cleanup := func() { _ = db.Close() }
	return repo, mock, cleanup
}

var tradeColumns = []string{"id", "symbol", "entry_price", "exit_price", "quantity", "profit_loss", "traded_at", "tags", "notes"}

func TestListTrades_SQLMock(t *testing.T) {
	ts := time.Date(2023, 8, 1, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name     string
		rows     *sqlmock.Rows
		queryErr error
		wantLen  int
		wantErr  bool
		check    func(t *testing.T, got []models.TradeRecord)
	}{
		{
			name:    "empty table",
			rows:    sqlmock.NewRows(tradeColumns),
			wantLen: 0,
		},
		{
			name: "full and sparse rows",
			rows: sqlmock.NewRows(tradeColumns).
				AddRow(int64(1), "AAPL", 100.0, 110.0, 5.0, 50.0, ts, "{swing,tech}", "earnings").
				AddRow(int64(2), "TSLA", nil, nil, nil, nil, nil, "{}", ""),
			wantLen: 2,
			check: func(t *testing.T, got []models.TradeRecord) {
				a, b := got[0], got[1]
				if a.ID != 1 || *a.EntryPrice != 100 || *a.ProfitLoss != 50 || !a.Timestamp.Equal(ts) {
					t.Fatalf("unexpected first trade %+v", a)
				}
				if len(a.Tags) != 2 || a.Tags[0] != "swing" || a.Tags[1] != "tech" {
					t.Fatalf("tags=%v", a.Tags)
				}
				if b.EntryPrice != nil || b.ProfitLoss != nil || !b.Timestamp.IsZero() {
					t.Fatalf("NULLs must stay absent: %+v", b)
				}
				if b.Tags == nil || len(b.Tags) != 0 {
					t.Fatalf("empty tags must be an empty slice, got %#v", b.Tags)
				}
			},
		},
		{
			name:     "query error",
			queryErr: dummyErr{},
			wantErr:  true,
		},
		{
			name: "scan error",
			rows: sqlmock.NewRows(tradeColumns).
				AddRow("not-an-id", "AAPL", nil, nil, nil, nil, nil, "{}", ""),
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, done := newMockRepo(t)
			defer done()

			exp := mock.ExpectQuery(`SELECT id, symbol, entry_price, exit_price, quantity, profit_loss, traded_at, tags, notes\s+FROM trades\s+ORDER BY id`)
			if tc.queryErr != nil {
				exp.WillReturnError(tc.queryErr)
			} else {
				exp.WillReturnRows(tc.rows)
			}

			got, err := repo.ListTrades(context.Background())
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ListTrades: %v", err)
			}
			if got == nil || len(got) != tc.wantLen {
				t.Fatalf("got %d trades (nil=%v), want %d", len(got), got == nil, tc.wantLen)
			}
			if tc.check != nil {
				tc.check(t, got)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestNewTradesRepository_Construct(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()
	if NewTradesRepository(db) == nil {
		t.Fatalf("expected non-nil repository")
	}
}

func sampleRecords() []models.TradeRecord {
	ts, _ := models.ParseTimestamp("2023-08-01T15:30:00")
	return []models.TradeRecord{
		{Symbol: "AAPL", EntryPrice: models.Float(100), ExitPrice: models.Float(110), Quantity: models.Float(5), ProfitLoss: models.Float(50), Timestamp: ts, Tags: []string{"swing"}},
		{Symbol: "TSLA"},
	}
}

func TestInsertTradesBatch_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	// pq.CopyIn cannot be intercepted precisely; the statement is matched loosely.
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`COPY "trades"`))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.InsertTradesBatch(context.Background(), sampleRecords()); err != nil {
		t.Fatalf("InsertTradesBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertTradesBatch_EmptyIsNoop(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	if err := repo.InsertTradesBatch(context.Background(), nil); err != nil {
		t.Fatalf("InsertTradesBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statements expected: %v", err)
	}
}

func TestInsertTradesBatch_Errors(t *testing.T) {
	cases := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
	}{
		{
			name: "begin",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(dummyErr{})
			},
		},
		{
			name: "prepare",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectPrepare(".*").WillReturnError(dummyErr{})
				mock.ExpectRollback()
			},
		},
		{
			name: "row exec",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectPrepare(".*").ExpectExec().WillReturnError(dummyErr{})
				mock.ExpectRollback()
			},
		},
		{
			name: "final exec",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				prep := mock.ExpectPrepare(".*")
				prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
				prep.ExpectExec().WillReturnError(dummyErr{})
				mock.ExpectRollback()
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, done := newMockRepo(t)
			defer done()
			tc.setup(mock)

			if err := repo.InsertTradesBatch(context.Background(), sampleRecords()[:1]); err == nil {
				t.Fatalf("expected error")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}
