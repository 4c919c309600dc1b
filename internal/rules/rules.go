package rules

import (
	"time"

	"estatecore/internal/models"
)

// Devices names the fixed targets of the estate-level rules.
type Devices struct {
	Light     string
	Generator string
}

// Default returns the estate rule set in evaluation order. New rules append
// to the end; existing order is load-bearing because the first match wins.
// The clock is injected so the night/late-hour windows are testable.
func Default(devices Devices, clock func() time.Time) []Rule {
	return []Rule{
		{
			ID:          "night_auto_lights_off",
			Description: "Turn off lights automatically if motion stops at night",
			Condition: func(event models.Event) bool {
				if event.EventType != "motion_detected" {
					return false
				}
				hour := clock().Hour()
				isNight := hour >= 23 || hour <= 5
				motion, ok := event.Payload["motion"].(bool)
				return isNight && ok && !motion
			},
			Action: func(event models.Event) models.Decision {
				return models.DeviceCommand{
					DeviceID: devices.Light,
					Command:  map[string]interface{}{"power": "off"},
					Priority: "high",
				}
			},
		},
		{
			ID:          "suspicious_motion_alert",
			Description: "If motion is detected outside the door after midnight, alert resident",
			Condition: func(event models.Event) bool {
				if event.EventType != "motion_detected" {
					return false
				}
				hour := clock().Hour()
				late := hour >= 0 && hour <= 4
				outside := event.Payload["location"] == "door"
				motion, ok := event.Payload["motion"].(bool)
				return late && outside && ok && motion
			},
			Action: func(event models.Event) models.Decision {
				userID, _ := event.Payload["user_id"].(string)
				return models.SuggestionDraft{
					TargetUserID: userID,
					Title:        "Late Night Motion Detected",
					Message:      "We detected movement near your door. Would you like to view your camera?",
					Metadata: map[string]interface{}{
						"device_id":      event.DeviceID,
						"rule_triggered": "suspicious_motion_alert",
					},
				}
			},
		},
		{
			ID:          "auto_start_generator",
			Description: "If power grid goes down, start generator",
			Condition: func(event models.Event) bool {
				return event.EventType == "power_state" && event.Payload["grid"] == "off"
			},
			Action: func(event models.Event) models.Decision {
				return models.DeviceCommand{
					DeviceID: devices.Generator,
					Command:  map[string]interface{}{"start": true},
					Priority: "highest",
				}
			},
		},
	}
}
