package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"syscall"
	"testing"
	"time"
)

type dummyHandler struct{}

func (d dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestStartServerAndShutdown(t *testing.T) {
	srv := startServer(dummyHandler{}, "0") // random port
	if srv == nil {
		t.Fatalf("expected server")
	}

	// Give server a moment to start
	time.Sleep(50 * time.Millisecond)

	shutdownCtx, c := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		t.Fatalf("shutdown err: %v", err)
	}
}

func TestGracefulShutdown_SignalPath(t *testing.T) {
	srv := startServer(dummyHandler{}, "0")

	cleaned := make(chan struct{}, 1)
	go func() {
		gracefulShutdown(context.Background(), srv, func() { close(cleaned) })
	}()

	// Give the goroutine time to set up signal notifications
	time.Sleep(50 * time.Millisecond)

	p, _ := os.FindProcess(os.Getpid())
	_ = p.Signal(syscall.SIGTERM)

	select {
	case <-cleaned:
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup not called after SIGTERM")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fakeLedger(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trades", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"symbol":"MSFT","entryPrice":10,"exitPrice":12,"quantity":1,"profitLoss":2,"timestamp":"2024-03-01T10:00:00","tags":["swing"],"notes":"n"}]`))
	})
	mux.HandleFunc("/api/trades/stats", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalTrades":1,"sumProfitLoss":2,"avgProfitLoss":2,"winRatePercent":100,"bySymbol":{"MSFT":1}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || strings.TrimSpace(out) != version {
		t.Fatalf("version: %q %v", out, err)
	}
}

func TestSnapshotCommand_Raw(t *testing.T) {
	srv := fakeLedger(t)
	t.Setenv("LOG_LEVEL", "error")

	out, err := execute(t, "snapshot", "--raw", "--api-url", srv.URL+"/")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for _, want := range []string{"# TradeSense Dashboard", "100.0%", "- **MSFT**: 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("snapshot missing %q:\n%s", want, out)
		}
	}
	if !regexp.MustCompile(`\|\s*MSFT\s*\|`).MatchString(out) {
		t.Fatalf("snapshot misses the trade row:\n%s", out)
	}
}

func TestSnapshotCommand_Styled(t *testing.T) {
	srv := fakeLedger(t)
	t.Setenv("LEDGER_API_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")

	out, err := execute(t, "snapshot", "--width", "200")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !strings.Contains(out, "MSFT") {
		t.Fatalf("styled snapshot missing trade:\n%s", out)
	}
}

func TestSnapshotCommand_InvalidURL(t *testing.T) {
	if _, err := execute(t, "snapshot", "--api-url", "ftp://nowhere"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestDashboardCommand_Wiring(t *testing.T) {
	srv := fakeLedger(t)
	t.Setenv("LOG_LEVEL", "error")

	var (
		gotPort string
		ready   int
	)
	old := run
	run = func(router http.Handler, port string, cleanup func()) {
		gotPort = port
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		ready = w.Code
		cleanup()
	}
	t.Cleanup(func() { run = old })

	if _, err := execute(t, "dashboard", "--port", "9099", "--api-url", srv.URL); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if gotPort != "9099" || ready != http.StatusOK {
		t.Fatalf("port=%q readyz=%d", gotPort, ready)
	}
}

func TestLedgerCommand_DBFailure(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "127.0.0.1")
	t.Setenv("POSTGRES_PORT", "54329")
	t.Setenv("LOG_LEVEL", "error")

	old := run
	run = func(http.Handler, string, func()) { t.Fatalf("server must not start") }
	t.Cleanup(func() { run = old })

	if _, err := execute(t, "ledger"); err == nil {
		t.Fatalf("expected init error")
	}
}
