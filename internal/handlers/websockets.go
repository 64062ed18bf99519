package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"motion_security/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms

	msgState   = "state"
	msgSetMode = "set_mode"
	msgModeSet = "mode_set"
	msgError   = "error"
)

// wsEnvelope wraps every message pushed to dashboard clients.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsCommand is a client message, e.g. {"type":"set_mode","mode":"manual"}.
type wsCommand struct {
	Type string `json:"type"`
	Mode string `json:"mode"`
}

// The dashboard is served from other origins on the LAN.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Security state stream
// @Description  Pushes the security state every interval (?interval=2s or ?interval_ms=500, max 10s). With ?token=<jwt> the client may send {"type":"set_mode","mode":"auto|manual"}.
// @Tags         security
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	canCommand := h.wsAuthorized(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := c.Request.Context()
	done := make(chan struct{})
	replies := make(chan wsEnvelope, 4)
	go h.startReader(ctx, conn, canCommand, done, replies)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := h.sendState(ctx, conn); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case env := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				return
			}
			if env.Type == msgModeSet {
				if err := h.sendState(ctx, conn); err != nil {
					return
				}
			}
		case <-ticker.C:
			if err := h.sendState(ctx, conn); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// wsAuthorized reports whether ?token= carries a valid session token.
func (h *Handler) wsAuthorized(c *gin.Context) bool {
	token := c.Query("token")
	if token == "" || h.services.Authorization == nil {
		return false
	}
	_, err := h.services.ParseToken(token)
	return err == nil
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// startReader handles control frames and client commands until the
// connection closes. Replies go through the writer loop.
func (h *Handler) startReader(ctx context.Context, conn *websocket.Conn, canCommand bool, done chan<- struct{}, replies chan<- wsEnvelope) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		env := h.handleCommand(ctx, data, canCommand)
		select {
		case replies <- env:
		default:
		}
	}
}

func (h *Handler) handleCommand(ctx context.Context, data []byte, canCommand bool) wsEnvelope {
	var cmd wsCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return wsEnvelope{Type: msgError, Error: "invalid message"}
	}
	if cmd.Type != msgSetMode {
		return wsEnvelope{Type: msgError, Error: "unknown message type " + strconv.Quote(cmd.Type)}
	}
	if !canCommand || h.services.Security == nil {
		return wsEnvelope{Type: msgError, Error: "not authorized to change mode"}
	}
	if err := h.services.Security.SetMode(ctx, service.ModeParams{Mode: cmd.Mode}); err != nil {
		return wsEnvelope{Type: msgError, Error: err.Error()}
	}
	return wsEnvelope{Type: msgModeSet, Data: h.services.Security.CurrentMode().String()}
}

// sendState writes the current security state under a write deadline.
func (h *Handler) sendState(ctx context.Context, conn *websocket.Conn) error {
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_get_state_failed", "err", err)
		}
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: msgState, Data: st})
}
