package rules

import (
	"testing"
	"time"

	"estatecore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDevices = Devices{Light: "light-01", Generator: "generator-01"}

func engineAtHour(hour int) *Engine {
	clock := func() time.Time {
		return time.Date(2026, 8, 28, hour, 30, 0, 0, time.Local)
	}
	return NewEngine(Default(testDevices, clock), zap.NewNop())
}

func motionEvent(motion bool, extra map[string]interface{}) models.Event {
	payload := map[string]interface{}{"motion": motion}
	for k, v := range extra {
		payload[k] = v
	}
	return models.Event{
		DeviceID:  "cam-7",
		EstateID:  "est-1",
		EventType: "motion_detected",
		Payload:   payload,
	}
}

func TestNightAutoLightsOff(t *testing.T) {
	decision := engineAtHour(2).Evaluate(motionEvent(false, nil))

	require.NotNil(t, decision)
	cmd, ok := decision.(models.DeviceCommand)
	require.True(t, ok)
	assert.Equal(t, "light-01", cmd.DeviceID)
	assert.Equal(t, map[string]interface{}{"power": "off"}, cmd.Command)
	assert.Equal(t, "high", cmd.Priority)
}

func TestNightAutoLightsOffHourWindow(t *testing.T) {
	matching := []int{23, 0, 1, 2, 3, 4, 5}
	for _, hour := range matching {
		assert.NotNil(t, engineAtHour(hour).Evaluate(motionEvent(false, nil)), "hour %d", hour)
	}
	for _, hour := range []int{6, 12, 22} {
		assert.Nil(t, engineAtHour(hour).Evaluate(motionEvent(false, nil)), "hour %d", hour)
	}
}

func TestSuspiciousMotionAlert(t *testing.T) {
	event := motionEvent(true, map[string]interface{}{"location": "door", "user_id": "u1"})
	decision := engineAtHour(1).Evaluate(event)

	require.NotNil(t, decision)
	draft, ok := decision.(models.SuggestionDraft)
	require.True(t, ok)
	assert.Equal(t, "u1", draft.TargetUserID)
	assert.Equal(t, "Late Night Motion Detected", draft.Title)
	assert.Equal(t, "cam-7", draft.Metadata["device_id"])
	assert.Equal(t, "suspicious_motion_alert", draft.Metadata["rule_triggered"])
}

func TestSuspiciousMotionAlertOutsideWindow(t *testing.T) {
	event := motionEvent(true, map[string]interface{}{"location": "door", "user_id": "u1"})
	// Hour 5 is still night for the lights rule but past the alert window,
	// and with motion=true the lights rule cannot shadow it.
	assert.Nil(t, engineAtHour(5).Evaluate(event))
}

func TestNightRuleDeclaredFirstShadowsAlert(t *testing.T) {
	// motion=false at a late hour matches the lights rule; the alert rule
	// requires motion=true, so only the lights command fires.
	event := motionEvent(false, map[string]interface{}{"location": "door", "user_id": "u1"})
	decision := engineAtHour(2).Evaluate(event)

	require.NotNil(t, decision)
	_, ok := decision.(models.DeviceCommand)
	assert.True(t, ok)
}

func TestAutoStartGenerator(t *testing.T) {
	event := models.Event{
		DeviceID:  "meter-1",
		EventType: "power_state",
		Payload:   map[string]interface{}{"grid": "off"},
	}
	decision := engineAtHour(14).Evaluate(event)

	require.NotNil(t, decision)
	cmd, ok := decision.(models.DeviceCommand)
	require.True(t, ok)
	assert.Equal(t, "generator-01", cmd.DeviceID)
	assert.Equal(t, map[string]interface{}{"start": true}, cmd.Command)
	assert.Equal(t, "highest", cmd.Priority)
}

func TestAutoStartGeneratorGridOn(t *testing.T) {
	event := models.Event{
		EventType: "power_state",
		Payload:   map[string]interface{}{"grid": "on"},
	}
	assert.Nil(t, engineAtHour(14).Evaluate(event))
}
