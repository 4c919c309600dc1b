package realtime

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type subscribeRequest struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Room   string `json:"room"`
}

// ServeWS upgrades the connection and bridges redis pub/sub to the socket.
// Clients pick their rooms: {"action":"subscribe","room":"estate:<id>"}.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.rdb.Subscribe(ctx)
	defer pubsub.Close()

	// Forward room traffic to the socket.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			// Closing the pubsub closes its channel, which unblocks the
			// forwarder even when the rooms are quiet.
			pubsub.Close()
			break
		}
		var req subscribeRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.Room == "" {
			continue
		}
		switch req.Action {
		case "subscribe":
			if err := pubsub.Subscribe(ctx, Channel(req.Room)); err != nil {
				h.log.Warn("room subscribe failed", zap.String("room", req.Room), zap.Error(err))
			}
		case "unsubscribe":
			if err := pubsub.Unsubscribe(ctx, Channel(req.Room)); err != nil {
				h.log.Warn("room unsubscribe failed", zap.String("room", req.Room), zap.Error(err))
			}
		}
	}
	<-done
}
