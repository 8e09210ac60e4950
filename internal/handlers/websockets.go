package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	statsWriteTimeout = 10 * time.Second
	statsIdleTimeout  = time.Minute // no pong within this window drops the client
	statsReadLimit    = 512         // clients only send control frames

	statsDefaultEvery = time.Second
	statsMaxEvery     = 10 * time.Second
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// statsStream pushes outcome counters to one websocket client.
type statsStream struct {
	h    *Handler
	conn *websocket.Conn
}

// @Summary      Stats stream
// @Description  WebSocket stream of {type:"stats", data} envelopes. Interval via ?interval=2s or ?interval_ms=2000 (default 1s, max 10s).
// @Tags         audit
// @Param        interval     query  string  false  "Go duration"
// @Param        interval_ms  query  int     false  "Milliseconds"
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      401  {object}  map[string]string
// @Router       /ws [get]
// @Security     BearerAuth
func (h *Handler) wsConnect(c *gin.Context) {
	every := h.parseInterval(c)

	up := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == h.opts.AllowedOrigin
		},
	}
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	s := &statsStream{h: h, conn: conn}
	if err := s.run(c.Request.Context(), every); err != nil && h.log != nil {
		h.log.Infow("ws_stream_closed", "err", err)
	}
}

// run sends a snapshot right away and then every tick, pinging at half the
// idle timeout, until the client goes away or ctx ends.
func (s *statsStream) run(ctx context.Context, every time.Duration) error {
	gone := s.watchClient()

	if err := s.push(ctx); err != nil {
		return err
	}

	snapshots := time.NewTicker(every)
	defer snapshots.Stop()
	pings := time.NewTicker(statsIdleTimeout / 2)
	defer pings.Stop()

	for {
		select {
		case <-gone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-pings.C:
			deadline := time.Now().Add(statsWriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return err
			}
		case <-snapshots.C:
			if err := s.push(ctx); err != nil {
				return err
			}
		}
	}
}

// watchClient reads (and discards) client frames so pongs refresh the idle
// deadline. The returned channel closes once the connection drops.
func (s *statsStream) watchClient() <-chan struct{} {
	gone := make(chan struct{})
	s.conn.SetReadLimit(statsReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(statsIdleTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(statsIdleTimeout))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := s.conn.NextReader(); err != nil {
				return
			}
		}
	}()
	return gone
}

// push writes one stats envelope; on a lookup failure the client gets an
// error envelope and the stream ends.
func (s *statsStream) push(ctx context.Context) error {
	env := wsEnvelope{Type: "stats"}
	st, err := s.h.services.Monitoring.GetStats(ctx)
	if err != nil {
		if s.h.log != nil {
			s.h.log.Errorw("ws_get_stats_failed", "err", err)
		}
		env = wsEnvelope{Type: "error", Error: "failed to load stats"}
	} else {
		env.Data = st
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(statsWriteTimeout))
	if werr := s.conn.WriteJSON(env); werr != nil {
		return werr
	}
	return err
}

// parseInterval picks the push period: ?interval (Go duration) first, then
// ?interval_ms. Values outside (0, 10s] are ignored.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	valid := func(d time.Duration) bool { return d > 0 && d <= statsMaxEvery }

	if d, err := time.ParseDuration(c.Query("interval")); err == nil && valid(d) {
		return d
	}
	if ms, err := strconv.Atoi(c.Query("interval_ms")); err == nil && ms <= int(statsMaxEvery/time.Millisecond) {
		if d := time.Duration(ms) * time.Millisecond; valid(d) {
			return d
		}
	}
	return statsDefaultEvery
}
