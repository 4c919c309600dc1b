package gateway

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// StateStore persists the latest reported device state.
type StateStore interface {
	UpsertDeviceState(ctx context.Context, deviceID string, status json.RawMessage) error
	GetDeviceEstate(ctx context.Context, deviceID string) (string, error)
}

// Notifier fans records out over the realtime channel.
type Notifier interface {
	Emit(ctx context.Context, room, event string, payload interface{}) error
}

// StateBridge handles inbound device-state messages: upsert the state row,
// then push the update to the owning estate's realtime room.
type StateBridge struct {
	store    StateStore
	notifier Notifier
	log      *zap.Logger
}

func NewStateBridge(store StateStore, notifier Notifier, log *zap.Logger) *StateBridge {
	return &StateBridge{store: store, notifier: notifier, log: log}
}

// HandleMessage is the gateway handler for state topics.
func (b *StateBridge) HandleMessage(topic string, payload []byte) {
	ctx := context.Background()
	parsed := ParseTopic(topic)
	if parsed.DeviceID == "" {
		b.log.Warn("state message without device id", zap.String("topic", topic))
		return
	}

	status := json.RawMessage(payload)
	if !json.Valid(payload) {
		wrapped, _ := json.Marshal(map[string]string{"raw": string(payload)})
		status = wrapped
	}

	if err := b.store.UpsertDeviceState(ctx, parsed.DeviceID, status); err != nil {
		b.log.Error("upsert device state failed",
			zap.String("device_id", parsed.DeviceID), zap.Error(err))
		return
	}

	estateID := parsed.EstateID
	if estateID == "" {
		resolved, err := b.store.GetDeviceEstate(ctx, parsed.DeviceID)
		if err != nil {
			b.log.Warn("cannot resolve estate for device",
				zap.String("device_id", parsed.DeviceID), zap.Error(err))
			return
		}
		estateID = resolved
	}

	update := map[string]interface{}{
		"device_id": parsed.DeviceID,
		"state":     status,
		"topic":     topic,
	}
	if err := b.notifier.Emit(ctx, "estate:"+estateID, "device:update", update); err != nil {
		b.log.Warn("device update fan-out failed",
			zap.String("estate_id", estateID), zap.Error(err))
	}
}
