package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradedash/internal/dashboard"
	"github.com/guttosm/tradedash/internal/domain/dto"
	"github.com/guttosm/tradedash/internal/middleware"
)

// DashboardController is the part of *dashboard.Dashboard the HTTP layer drives.
type DashboardController interface {
	Current(ctx context.Context) (dashboard.Frame, error)
	Subscribe(ctx context.Context) (<-chan dashboard.Frame, func(), error)
	SelectFile(f dashboard.FileHandle)
	SubmitUpload()
	Refresh()
}

var _ DashboardController = (*dashboard.Dashboard)(nil)

// DashboardHandler serves the dashboard page and turns form posts into
// dashboard actions.
//
// Actions complete asynchronously: POST handlers only enqueue them and send
// the browser back to the page, whose websocket picks up the outcome.
type DashboardHandler struct {
	ctrl      DashboardController
	html      *dashboard.HTMLRenderer
	maxUpload int64
}

// NewDashboardHandler builds a handler. maxUpload caps the multipart body of POST /upload.
func NewDashboardHandler(ctrl DashboardController, html *dashboard.HTMLRenderer, maxUpload int64) *DashboardHandler {
	return &DashboardHandler{ctrl: ctrl, html: html, maxUpload: maxUpload}
}

// Page handles GET /.
func (h *DashboardHandler) Page(c *gin.Context) {
	frame, ok := h.current(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.html.Page(&buf, frame.View); err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to render dashboard", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// View handles GET /view.
func (h *DashboardHandler) View(c *gin.Context) {
	frame, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, frame)
}

// Upload handles POST /upload.
//
// A file part with a name replaces the selection; without one the current
// selection, if any, is submitted again.
func (h *DashboardHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile(UploadField)
	switch {
	case err == nil:
		if fh.Filename != "" {
			data, err := readPart(fh)
			if err != nil {
				middleware.AbortWithError(c, http.StatusBadRequest, "failed to read file", err)
				return
			}
			h.ctrl.SelectFile(dashboard.FileHandle{Name: fh.Filename, Data: data})
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.AbortWithError(c, http.StatusRequestEntityTooLarge, "file too large", err)
			return
		}
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid upload form", err)
		return
	}

	h.ctrl.SubmitUpload()
	h.accepted(c)
}

// Refresh handles POST /refresh.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	h.ctrl.Refresh()
	h.accepted(c)
}

func (h *DashboardHandler) current(c *gin.Context) (dashboard.Frame, bool) {
	frame, err := h.ctrl.Current(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, http.StatusServiceUnavailable, "dashboard unavailable", err)
		return dashboard.Frame{}, false
	}
	return frame, true
}

// accepted sends browsers back to the page and API callers a 202.
func (h *DashboardHandler) accepted(c *gin.Context) {
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: "accepted"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
