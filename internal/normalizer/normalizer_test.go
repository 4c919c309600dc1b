package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNormalizer(now time.Time) *Normalizer {
	n := New(zap.NewNop())
	n.now = func() time.Time { return now }
	return n
}

func TestNormalizeRecoversIdentifiersFromTopic(t *testing.T) {
	n := newTestNormalizer(time.Now())

	event, err := n.Normalize("root/estate-42/device/dev-7/telemetry", []byte(`{"type":"motion_detected"}`))
	require.NoError(t, err)

	assert.Equal(t, "estate-42", event.EstateID)
	assert.Equal(t, "dev-7", event.DeviceID)
	assert.Equal(t, "motion_detected", event.EventType)
}

func TestNormalizePrefersPayloadIdentifiers(t *testing.T) {
	n := newTestNormalizer(time.Now())

	event, err := n.Normalize("root/estate-42/device/dev-7/events",
		[]byte(`{"event_type":"power_state","device_id":"gen-1","estate_id":"est-9"}`))
	require.NoError(t, err)

	assert.Equal(t, "gen-1", event.DeviceID)
	assert.Equal(t, "est-9", event.EstateID)
}

func TestNormalizeUsesSentinelWhenDeviceUnrecoverable(t *testing.T) {
	n := newTestNormalizer(time.Now())

	event, err := n.Normalize("root/broadcast", []byte(`{"type":"announce"}`))
	require.NoError(t, err)

	assert.Equal(t, UnknownDevice, event.DeviceID)
}

func TestNormalizeWrapsUnparsablePayload(t *testing.T) {
	n := newTestNormalizer(time.Now())

	_, err := n.Normalize("root/est-1/device/dev-1/events", []byte("not json"))
	// Still dropped, but only because no event type exists, not because of
	// the parse failure itself.
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestNormalizeDropsEventWithoutType(t *testing.T) {
	n := newTestNormalizer(time.Now())

	_, err := n.Normalize("root/est-1/device/dev-1/telemetry", []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestNormalizeExtractsNestedPayloadAndTimestamp(t *testing.T) {
	arrival := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	n := newTestNormalizer(arrival)

	event, err := n.Normalize("root/est-1/device/dev-1/events",
		[]byte(`{"type":"motion_detected","timestamp":1700000000,"payload":{"motion":true}}`))
	require.NoError(t, err)

	assert.Equal(t, true, event.Payload["motion"])
	assert.Equal(t, time.Unix(1700000000, 0), event.OccurredAt)
}

func TestNormalizeDefaultsOccurredAtToArrival(t *testing.T) {
	arrival := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	n := newTestNormalizer(arrival)

	event, err := n.Normalize("root/est-1/device/dev-1/events",
		[]byte(`{"type":"motion_detected","data":{"motion":false}}`))
	require.NoError(t, err)

	assert.Equal(t, arrival, event.OccurredAt)
	assert.Equal(t, false, event.Payload["motion"])
}
