package dashboard

import (
	"context"

	"github.com/guttosm/tradedash/internal/domain/dto"
	"github.com/guttosm/tradedash/internal/domain/models"
)

// LedgerAPI is the part of the ledger service the dashboard depends on.
// *ledgerclient.Client implements it.
type LedgerAPI interface {
	ListTrades(ctx context.Context) ([]models.TradeRecord, error)
	GetStats(ctx context.Context) (models.StatsSnapshot, error)
	UploadTrades(ctx context.Context, filename string, data []byte) (*dto.UploadResponse, error)
}

// FileHandle is a file the user picked for import.
type FileHandle struct {
	Name string
	Data []byte
}

// LedgerState is owned by LedgerStore. Both fields are replaced wholesale.
type LedgerState struct {
	Trades []models.TradeRecord
	Stats  models.StatsSnapshot
}

// UploadState is owned by UploadController.
type UploadState struct {
	Selected      *FileHandle
	StatusMessage string
}

// State is everything the view is rendered from.
type State struct {
	Ledger LedgerState
	Upload UploadState
}
