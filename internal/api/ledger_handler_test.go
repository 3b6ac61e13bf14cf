package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradedash/internal/domain/dto"
	"github.com/guttosm/tradedash/internal/domain/models"
	"github.com/guttosm/tradedash/internal/ingestion"
	"github.com/guttosm/tradedash/internal/service"
)

type mockTradesService struct {
	trades    []models.TradeRecord
	listErr   error
	stats     models.StatsSnapshot
	statsErr  error
	result    ingestion.Result
	importErr error
	imported  string
}

func (m *mockTradesService) ListTrades(context.Context) ([]models.TradeRecord, error) {
	return m.trades, m.listErr
}

func (m *mockTradesService) Stats(context.Context) (models.StatsSnapshot, error) {
	return m.stats, m.statsErr
}

func (m *mockTradesService) Import(_ context.Context, filename string, r io.Reader) (ingestion.Result, error) {
	b, _ := io.ReadAll(r)
	m.imported = filename + ":" + string(b)
	return m.result, m.importErr
}

var _ service.TradesService = (*mockTradesService)(nil)

func setupLedgerRouter(s service.TradesService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewLedgerRouter(NewLedgerHandler(s, 1<<20), testServerConfig())
}

func TestLedgerHandler_Reads_TableDriven(t *testing.T) {
	cases := []struct {
		name   string
		svc    *mockTradesService
		path   string
		status int
		assert func(t *testing.T, body []byte)
	}{
		{
			name:   "empty ledger lists as array",
			svc:    &mockTradesService{},
			path:   "/api/trades",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				if string(body) != "[]" {
					t.Fatalf("body=%s", body)
				}
			},
		},
		{
			name:   "trades",
			svc:    &mockTradesService{trades: []models.TradeRecord{{ID: 1, Symbol: "AAPL", Tags: []string{"swing"}}}},
			path:   "/api/trades",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out []models.TradeRecord
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if len(out) != 1 || out[0].Symbol != "AAPL" || out[0].Tags[0] != "swing" {
					t.Fatalf("unexpected body: %+v", out)
				}
			},
		},
		{
			name:   "list failure",
			svc:    &mockTradesService{listErr: errors.New("db down")},
			path:   "/api/trades",
			status: http.StatusInternalServerError,
		},
		{
			name:   "stats",
			svc:    &mockTradesService{stats: models.StatsSnapshot{TotalTrades: 2, WinRatePercent: 50, BySymbol: map[string]int64{"A": 2}}},
			path:   "/api/trades/stats",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out models.StatsSnapshot
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.TotalTrades != 2 || out.WinRatePercent != 50 || out.BySymbol["A"] != 2 {
					t.Fatalf("unexpected body: %+v", out)
				}
			},
		},
		{
			name:   "stats failure",
			svc:    &mockTradesService{statsErr: errors.New("db down")},
			path:   "/api/trades/stats",
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupLedgerRouter(tc.svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.assert != nil {
				tc.assert(t, w.Body.Bytes())
			}
		})
	}
}

func TestLedgerHandler_Upload_TableDriven(t *testing.T) {
	cases := []struct {
		name       string
		svc        *mockTradesService
		field      string
		filename   string
		status     int
		want       dto.UploadResponse
		wantImport string
	}{
		{
			name:       "imported",
			svc:        &mockTradesService{result: ingestion.Result{Imported: 2, Skipped: 1}},
			field:      UploadField,
			filename:   "t.csv",
			status:     http.StatusOK,
			want:       dto.UploadResponse{Status: dto.UploadStatusOK, Imported: 2, Skipped: 1},
			wantImport: "t.csv:symbol\n",
		},
		{
			name:       "import error reported in body",
			svc:        &mockTradesService{importErr: errors.New("bad format")},
			field:      UploadField,
			filename:   "t.xlsx",
			status:     http.StatusOK,
			want:       dto.UploadResponse{Status: dto.UploadStatusError, Message: "bad format"},
			wantImport: "t.xlsx:symbol\n",
		},
		{
			name:     "missing file",
			svc:      &mockTradesService{},
			field:    "other",
			filename: "t.csv",
			status:   http.StatusBadRequest,
			want:     dto.UploadResponse{Status: dto.UploadStatusError, Message: "file is required"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupLedgerRouter(tc.svc)
			body, ct := multipartBody(t, tc.field, tc.filename, []byte("symbol\n"))
			req := httptest.NewRequest(http.MethodPost, "/api/trades/upload", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			var out dto.UploadResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out != tc.want {
				t.Fatalf("got %+v, want %+v", out, tc.want)
			}
			if tc.svc.imported != tc.wantImport {
				t.Fatalf("imported %q, want %q", tc.svc.imported, tc.wantImport)
			}
		})
	}
}
