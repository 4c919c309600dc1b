package normalizer

import (
	"encoding/json"
	"errors"
	"time"

	"estatecore/internal/gateway"
	"estatecore/internal/models"

	"go.uber.org/zap"
)

// ErrInvalidEvent marks an inbound message that failed validation after
// identifier recovery. This is the one drop point in the ingestion path.
var ErrInvalidEvent = errors.New("normalizer: invalid event")

// UnknownDevice is substituted when the device id cannot be recovered from
// payload or topic. The event is still forwarded so misconfigured topics
// show up in logs and rule failures instead of disappearing.
const UnknownDevice = "unknown"

// Normalizer turns raw topic/payload pairs into canonical events.
type Normalizer struct {
	log *zap.Logger
	now func() time.Time
}

func New(log *zap.Logger) *Normalizer {
	return &Normalizer{log: log, now: time.Now}
}

// Normalize parses a raw inbound message into an Event. A parse failure
// does not reject the message: the raw value is wrapped so it stays
// loggable. Missing identifiers are recovered from the topic structure.
func (n *Normalizer) Normalize(topic string, payload []byte) (models.Event, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil || body == nil {
		body = map[string]interface{}{"value": string(payload)}
	}

	event := models.Event{
		DeviceID:   stringField(body, "device_id"),
		EstateID:   stringField(body, "estate_id"),
		EventType:  stringField(body, "event_type"),
		OccurredAt: n.now(),
	}
	if event.EventType == "" {
		event.EventType = stringField(body, "type")
	}
	if ts, ok := body["timestamp"].(float64); ok && ts > 0 {
		event.OccurredAt = time.Unix(int64(ts), 0)
	}

	if data, ok := body["payload"].(map[string]interface{}); ok {
		event.Payload = data
	} else if data, ok := body["data"].(map[string]interface{}); ok {
		event.Payload = data
	} else {
		event.Payload = body
	}

	parsed := gateway.ParseTopic(topic)
	if event.DeviceID == "" {
		event.DeviceID = parsed.DeviceID
	}
	if event.EstateID == "" {
		event.EstateID = parsed.EstateID
	}
	if event.DeviceID == "" {
		n.log.Warn("device id unrecoverable, using sentinel",
			zap.String("topic", topic))
		event.DeviceID = UnknownDevice
	}

	if event.EventType == "" {
		n.log.Warn("dropping event without type",
			zap.String("topic", topic), zap.String("device_id", event.DeviceID))
		return models.Event{}, ErrInvalidEvent
	}

	return event, nil
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
