package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guttosm/tradedash/config"
	"github.com/guttosm/tradedash/internal/dashboard"
	"github.com/guttosm/tradedash/internal/domain/models"
)

type fakeController struct {
	mu        sync.Mutex
	frame     dashboard.Frame
	err       error
	selected  []dashboard.FileHandle
	submits   int
	refreshes int
	feed      chan dashboard.Frame
	unsubbed  bool
}

func newFakeController() *fakeController {
	st := dashboard.State{Ledger: dashboard.LedgerState{Trades: []models.TradeRecord{
		{ID: 7, Symbol: "AAPL", ProfitLoss: models.Float(12.5)},
	}}}
	return &fakeController{
		frame: dashboard.Frame{Seq: 3, View: dashboard.Render(st, dashboard.CatalogFor("en")), State: st},
		feed:  make(chan dashboard.Frame, 4),
	}
}

func (f *fakeController) Current(context.Context) (dashboard.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame, f.err
}

func (f *fakeController) Subscribe(context.Context) (<-chan dashboard.Frame, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.feed, func() {
		f.mu.Lock()
		f.unsubbed = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeController) SelectFile(fh dashboard.FileHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, fh)
}

func (f *fakeController) SubmitUpload() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
}

func (f *fakeController) Refresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{Port: "0", UploadMaxBytes: 1 << 20, RequestTimeout: 5 * time.Second}
}

func testRenderer(t *testing.T) *dashboard.HTMLRenderer {
	t.Helper()
	r, err := dashboard.NewHTMLRenderer(dashboard.ThemeFor("dark"))
	if err != nil {
		t.Fatalf("NewHTMLRenderer: %v", err)
	}
	return r
}

func newDashboardTestRouter(t *testing.T, ctrl *fakeController, cfg config.ServerConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	html := testRenderer(t)
	h := NewDashboardHandler(ctrl, html, cfg.UploadMaxBytes)
	return NewDashboardRouter(h, NewLiveFeed(ctrl, html, zerolog.Nop()), cfg)
}

// multipartBody builds a form with one field. An empty filename writes a
// plain value part instead of a file.
func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename == "" {
		if err := mw.WriteField(field, string(data)); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	} else {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = part.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
