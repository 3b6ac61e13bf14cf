// Package ledgerclient talks to the ledger API: list trades, fetch stats and
// import a file. It is the only place the dashboard touches the network.
package ledgerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/tradedash/internal/domain/dto"
	"github.com/guttosm/tradedash/internal/domain/models"
	"github.com/guttosm/tradedash/internal/logger"
)

// Ledger API paths.
const (
	PathTrades = "/api/trades"
	PathStats  = "/api/trades/stats"
	PathUpload = "/api/trades/upload"

	// UploadField is the multipart field carrying the file.
	UploadField = "file"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 16 << 20

var (
	// ErrUnexpectedStatus is returned for non-2xx answers to read requests.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrDuplicateTradeID is returned when a trades response repeats an id.
	ErrDuplicateTradeID = errors.New("duplicate trade id")
)

// UploadError is an application-level import failure: the server answered,
// but did not report status "ok". Message is the server's explanation, if any.
type UploadError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *UploadError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upload rejected (http %d, status %q): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("upload rejected (http %d, status %q)", e.StatusCode, e.Status)
}

// Client is a small HTTP client for the ledger API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger replaces the component logger (default: logger.With(logger.ComponentLedgerClient)).
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for baseURL whose requests time out after timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     logger.With(logger.ComponentLedgerClient),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTrades fetches the full trade collection in server order.
func (c *Client) ListTrades(ctx context.Context) ([]models.TradeRecord, error) {
	var trades []models.TradeRecord
	if err := c.getJSON(ctx, PathTrades, &trades); err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []models.TradeRecord{}
	}

	seen := make(map[int64]struct{}, len(trades))
	for _, t := range trades {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("list trades: %w: %d", ErrDuplicateTradeID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return trades, nil
}

// GetStats fetches the current statistics snapshot.
func (c *Client) GetStats(ctx context.Context) (models.StatsSnapshot, error) {
	var stats models.StatsSnapshot
	if err := c.getJSON(ctx, PathStats, &stats); err != nil {
		return models.StatsSnapshot{}, err
	}
	return stats, nil
}

// UploadTrades posts data as a multipart file named filename.
//
// A nil error means the server answered with status "ok". An *UploadError
// means the server answered with an upload response reporting a failure. Any
// other error means the request did not complete or the answer was not an
// upload response.
func (c *Client) UploadTrades(ctx context.Context, filename string, data []byte) (*dto.UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(UploadField, filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathUpload, &body)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("upload: read response: %w", err)
	}

	// A body that is not an upload response (a proxy error page, say) is
	// a failed upload, not a rejection by the ledger.
	var out dto.UploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn().Int("http_status", resp.StatusCode).Str("file", filename).Err(err).Msg("upload response is not json")
		return nil, fmt.Errorf("upload: decode response (http %d): %w", resp.StatusCode, err)
	}
	c.log.Debug().Int("http_status", resp.StatusCode).Str("file", filename).Str("status", out.Status).Msg("upload answered")
	if isSuccess(resp.StatusCode) && out.OK() {
		return &out, nil
	}
	return nil, &UploadError{StatusCode: resp.StatusCode, Status: out.Status, Message: out.Message}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return fmt.Errorf("get %s: %w: %d", path, ErrUnexpectedStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("get %s: decode: %w", path, err)
	}
	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
