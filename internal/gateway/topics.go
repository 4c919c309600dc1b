package gateway

import "strings"

// Topic conventions. Inbound device traffic arrives on
// <root>/<estate>/device/<device-id>/<kind> or
// <root>/estate/<estate-id>/device/<device-id>/<kind>,
// where <kind> is telemetry, events, state or announce.

// ParsedTopic is the identifying parts recovered from a topic string.
type ParsedTopic struct {
	EstateID string
	DeviceID string
	Kind     string
}

func isDeviceMarker(s string) bool {
	return s == "device" || s == "devices"
}

// ParseTopic recovers estate/device ids from a hierarchical topic.
// The segment after a literal "device"/"devices" segment is the device id;
// the segment after the root token is the estate id, unless it is itself a
// device marker or the literal "estate" (in which case the next segment is).
func ParseTopic(topic string) ParsedTopic {
	parts := strings.Split(topic, "/")
	var p ParsedTopic

	for i, seg := range parts {
		if isDeviceMarker(seg) && i+1 < len(parts) {
			p.DeviceID = parts[i+1]
			break
		}
	}

	if len(parts) > 1 && !isDeviceMarker(parts[1]) {
		if parts[1] == "estate" {
			if len(parts) > 2 && !isDeviceMarker(parts[2]) {
				p.EstateID = parts[2]
			}
		} else {
			p.EstateID = parts[1]
		}
	}

	if len(parts) > 0 {
		p.Kind = parts[len(parts)-1]
	}
	return p
}

// CommandTopic is the fixed per-device channel for immediate commands.
func CommandTopic(root, deviceID string) string {
	return root + "/device/" + deviceID + "/commands"
}

// SetTopic is the per-estate/per-device channel automation runs publish to.
func SetTopic(root, estateID, deviceID string) string {
	return root + "/estate/" + estateID + "/device/" + deviceID + "/set"
}

// StateFilter matches inbound device-state messages.
func StateFilter(root string) string {
	return root + "/+/device/+/state"
}

// EstateStateFilter matches state messages on the estate-prefixed form.
func EstateStateFilter(root string) string {
	return root + "/estate/+/device/+/state"
}

// EventFilters matches inbound telemetry/event messages on both topic forms.
func EventFilters(root string) []string {
	return []string{
		root + "/+/device/+/events",
		root + "/+/device/+/telemetry",
		root + "/estate/+/device/+/events",
		root + "/estate/+/device/+/telemetry",
	}
}
