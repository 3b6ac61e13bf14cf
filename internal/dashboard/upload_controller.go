package dashboard

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guttosm/tradedash/internal/ledgerclient"
)

// refresher is what a successful upload invalidates.
type refresher interface {
	RefreshTrades()
	RefreshStats()
}

// UploadController owns the selected file and the status message.
//
// Like LedgerStore, it is driven from the dashboard loop only. It never reads
// ledger state; it only asks the ledger to refresh after a successful import.
type UploadController struct {
	api     LedgerAPI
	fx      spawner
	ledger  refresher
	catalog Catalog
	log     zerolog.Logger
	state   UploadState
}

func newUploadController(api LedgerAPI, fx spawner, ledger refresher, catalog Catalog, log zerolog.Logger) *UploadController {
	return &UploadController{api: api, fx: fx, ledger: ledger, catalog: catalog, log: log}
}

// State returns the current upload state.
func (c *UploadController) State() UploadState {
	return c.state
}

// SelectFile records the user's choice. Name and size are not validated.
func (c *UploadController) SelectFile(f FileHandle) {
	c.state.Selected = &f
	c.log.Debug().Str("file", f.Name).Int("bytes", len(f.Data)).Msg("file selected")
}

// SubmitUpload sends the selected file to the ledger. Without a selection it
// only sets the "please select a file" message.
func (c *UploadController) SubmitUpload() {
	if c.state.Selected == nil {
		c.state.StatusMessage = c.catalog.SelectFileFirst
		return
	}

	c.state.StatusMessage = ""
	file := *c.state.Selected
	attempt := uuid.NewString()
	api := c.api

	c.log.Info().Str("attempt", attempt).Str("file", file.Name).Int("bytes", len(file.Data)).Msg("upload started")
	c.fx.spawn("upload", func(ctx context.Context) event {
		resp, err := api.UploadTrades(ctx, file.Name, file.Data)
		return uploadFinished{attempt: attempt, resp: resp, err: err}
	})
}

func (c *UploadController) applyResult(e uploadFinished) {
	var rejected *ledgerclient.UploadError

	switch {
	case e.err == nil && e.resp != nil && e.resp.OK():
		c.state.StatusMessage = c.catalog.UploadOK
		c.log.Info().Str("attempt", e.attempt).Int("imported", e.resp.Imported).Int("skipped", e.resp.Skipped).Msg("upload accepted")
		c.ledger.RefreshTrades()
		c.ledger.RefreshStats()

	case e.err == nil:
		msg := ""
		if e.resp != nil {
			msg = e.resp.Message
		}
		c.state.StatusMessage = c.catalog.uploadRejected(msg)
		c.log.Warn().Str("attempt", e.attempt).Str("server_message", msg).Msg("upload rejected")

	case errors.As(e.err, &rejected):
		c.state.StatusMessage = c.catalog.uploadRejected(rejected.Message)
		c.log.Warn().Str("attempt", e.attempt).Int("http_status", rejected.StatusCode).Str("server_message", rejected.Message).Msg("upload rejected")

	default:
		c.state.StatusMessage = c.catalog.UploadFailed
		c.log.Error().Str("attempt", e.attempt).Err(e.err).Msg("upload request failed")
	}
}
