package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Listen is the SSE endpoint. Each message on the wire is
// "event: <tag>\ndata: <payload>\n\n"; a synthetic connected event goes out
// first so client-side open logic has a deterministic first message.
func (h *Handlers) Listen(c *gin.Context) {
	rid := c.Param("rid")
	uid := c.GetString("client_token")
	if !h.Manager.Has(rid) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ch := newStreamChannel(h.Cfg.ChannelBuffer)
	h.Registry.Register(rid, uid, ch)
	defer func() {
		h.Registry.Unregister(rid, uid, ch)
		ch.Close()
	}()

	log.Info().Str("module", "adapters.http").Str("room", rid).Str("subscriber", uid).Msg("sse stream opened")

	fmt.Fprint(c.Writer, "event: connected\ndata: connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.Cfg.PingPeriod)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "adapters.http").Str("room", rid).Str("subscriber", uid).Msg("sse stream closed")
			return

		case <-ticker.C:
			// comment frame keeps intermediaries from timing out the connection
			fmt.Fprint(c.Writer, ": ping\n\n")
			flusher.Flush()

		case f, ok := <-ch.send:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", f.Event, f.Data)
			flusher.Flush()
		}
	}
}
