package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Message is the named-event envelope delivered to dashboard clients.
type Message struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub fans named events out to rooms ("estate:<id>", "user:<id>") over
// redis pub/sub, so every backend process sees every emit regardless of
// which one holds the websocket.
type Hub struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewHub(rdb *redis.Client, log *zap.Logger) *Hub {
	return &Hub{rdb: rdb, log: log}
}

// Channel maps a room name to its redis pub/sub channel.
func Channel(room string) string {
	return "realtime:" + room
}

// Emit publishes a named event to a room.
func (h *Hub) Emit(ctx context.Context, room, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Message{Room: room, Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", event, err)
	}
	if err := h.rdb.Publish(ctx, Channel(room), msg).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", room, err)
	}
	h.log.Debug("realtime emit", zap.String("room", room), zap.String("event", event))
	return nil
}
