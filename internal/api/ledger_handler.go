package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradedash/internal/domain/dto"
	"github.com/guttosm/tradedash/internal/domain/models"
	"github.com/guttosm/tradedash/internal/logger"
	"github.com/guttosm/tradedash/internal/middleware"
	"github.com/guttosm/tradedash/internal/service"
)

// UploadField is the multipart field carrying the trades file.
const UploadField = "file"

// LedgerHandler provides the ledger service's JSON API.
//
// Responsibilities:
//   - List stored trades
//   - Serve aggregate statistics
//   - Import CSV/XLSX uploads
type LedgerHandler struct {
	svc       service.TradesService
	maxUpload int64
}

// NewLedgerHandler constructs a LedgerHandler. maxUpload caps the upload body.
func NewLedgerHandler(svc service.TradesService, maxUpload int64) *LedgerHandler {
	return &LedgerHandler{svc: svc, maxUpload: maxUpload}
}

// ListTrades godoc
// @Summary      List trades
// @Description  Returns every stored trade ordered by id
// @Tags         trades
// @Produce      json
// @Success      200  {array}   models.TradeRecord
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/trades [get]
func (h *LedgerHandler) ListTrades(c *gin.Context) {
	trades, err := h.svc.ListTrades(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to list trades", err)
		return
	}
	if trades == nil {
		trades = []models.TradeRecord{}
	}
	c.JSON(http.StatusOK, trades)
}

// GetStats godoc
// @Summary      Ledger statistics
// @Description  Trade count, profit/loss sum and average, win rate and per-symbol counts
// @Tags         trades
// @Produce      json
// @Success      200  {object}  models.StatsSnapshot
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/trades/stats [get]
func (h *LedgerHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to compute stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UploadTrades godoc
// @Summary      Import trades
// @Description  Imports a CSV or XLSX file. Rows already in the ledger are skipped.
// @Tags         trades
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV or XLSX file"
// @Success      200   {object}  dto.UploadResponse  "status ok, or status error with a message"
// @Failure      400   {object}  dto.UploadResponse
// @Failure      413   {object}  dto.UploadResponse
// @Router       /api/trades/upload [post]
func (h *LedgerHandler) UploadTrades(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile(UploadField)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		_ = c.Error(err)
		c.JSON(status, dto.UploadResponse{Status: dto.UploadStatusError, Message: "file is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusOK, dto.UploadResponse{Status: dto.UploadStatusError, Message: err.Error()})
		return
	}
	defer func() { _ = f.Close() }()

	res, err := h.svc.Import(c.Request.Context(), fh.Filename, f)
	if err != nil {
		log := logger.With(logger.ComponentLedger)
		log.Warn().Err(err).Str("file", fh.Filename).Msg("import failed")
		c.JSON(http.StatusOK, dto.UploadResponse{Status: dto.UploadStatusError, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		Status:   dto.UploadStatusOK,
		Imported: res.Imported,
		Skipped:  res.Skipped,
	})
}
