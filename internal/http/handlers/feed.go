package handlers

import (
	"context"
	"net/http"
	"time"

	"pickupcore/internal/http/middleware"
	"pickupcore/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS middleware and the token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /api/dispatch/feed?date=&session=
// Relays committed dispatch changes for one session over a websocket.
// Clients treat each message as a cue to refetch the stop list.
func (h Handlers) DispatchFeed(c *gin.Context) {
	if h.Subscriber == nil {
		respondError(c, http.StatusServiceUnavailable, "feed_disabled", "live feed tidak aktif, gunakan polling", gin.H{"refresh_after_seconds": h.PollInterval})
		return
	}
	date, sess, err := h.dispatch(c).Slot(c.Request.Context(), c.Query("date"), c.Query("session"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	feed, err := h.Subscriber.Subscribe(ctx, date, sess.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LogEvent(middleware.GetRequestID(c), "feed", "upgrade_failed", err.Error())
		return
	}
	defer conn.Close()

	// Drain client frames so close and pong control messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case e, ok := <-feed:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}
