package api

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/guttosm/tradedash/internal/dashboard"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// liveMessage is what every websocket client receives per rendered frame.
type liveMessage struct {
	Seq  uint64 `json:"seq"`
	HTML string `json:"html"`
}

// LiveFeed pushes every dashboard frame to connected browsers.
type LiveFeed struct {
	ctrl     DashboardController
	html     *dashboard.HTMLRenderer
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewLiveFeed(ctrl DashboardController, html *dashboard.HTMLRenderer, log zerolog.Logger) *LiveFeed {
	return &LiveFeed{
		ctrl: ctrl,
		html: html,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		log: log,
	}
}

// Serve handles GET /ws. The connection lives until the client goes away or
// the dashboard stops, so it is not bound to the request timeout.
func (f *LiveFeed) Serve(c *gin.Context) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		f.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames, unsubscribe, err := f.ctrl.Subscribe(ctx)
	if err != nil {
		f.closeWith(conn, websocket.CloseGoingAway)
		return
	}
	defer unsubscribe()

	go f.readLoop(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				f.closeWith(conn, websocket.CloseGoingAway)
				return
			}
			if err := f.push(conn, frame); err != nil {
				f.log.Debug().Err(err).Uint64("seq", frame.Seq).Msg("websocket client gone")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *LiveFeed) push(conn *websocket.Conn, frame dashboard.Frame) error {
	var buf bytes.Buffer
	if err := f.html.Content(&buf, frame.View); err != nil {
		f.log.Error().Err(err).Uint64("seq", frame.Seq).Msg("failed to render frame")
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(liveMessage{Seq: frame.Seq, HTML: buf.String()})
}

// readLoop drains client messages so pongs and close frames are processed.
func (f *LiveFeed) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *LiveFeed) closeWith(conn *websocket.Conn, code int) {
	msg := websocket.FormatCloseMessage(code, http.StatusText(http.StatusServiceUnavailable))
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
