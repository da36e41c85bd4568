package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ListenWS streams the same frames as the SSE endpoint over a websocket, as
// JSON objects. The read pump exists only to detect the peer going away.
func (h *Handlers) ListenWS(c *gin.Context) {
	rid := c.Param("rid")
	uid := c.GetString("client_token")
	if !h.Manager.Has(rid) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}
	defer ws.Close()

	ch := newStreamChannel(h.Cfg.ChannelBuffer)
	h.Registry.Register(rid, uid, ch)
	defer func() {
		h.Registry.Unregister(rid, uid, ch)
		ch.Close()
	}()

	log.Info().Str("module", "adapters.http").Str("room", rid).Str("subscriber", uid).Msg("ws stream opened")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := ws.WriteJSON(frame{Event: "connected", Data: "connected"}); err != nil {
		return
	}

	ticker := time.NewTicker(h.Cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "adapters.http").Str("room", rid).Str("subscriber", uid).Msg("ws stream closed")
			return

		case <-ticker.C:
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case f, ok := <-ch.send:
			if !ok {
				return
			}
			if err := ws.WriteJSON(f); err != nil {
				return
			}
		}
	}
}
