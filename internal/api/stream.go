package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// StreamComments GET /api/posts/:id/comments/stream
//
// Upgrades to a websocket and pushes every comment added to the post until
// either side goes away.
func (h *Handler) StreamComments(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	store, ok := h.liveStore(c, "Comment streams")
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	comments, err := store.SubscribeToComments(ctx, id)
	if err != nil {
		h.respondError(c, err, "Failed to subscribe to comments")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "post_id", id, "error", err)
		return
	}
	defer conn.Close()
	slog.Debug("Comment stream opened", "post_id", id)

	// The client never sends data; reading surfaces its close frame.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case comment, ok := <-comments:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(comment); err != nil {
				slog.Debug("Comment stream write failed", "post_id", id, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
