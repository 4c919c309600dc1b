package models

import (
	"encoding/json"
	"time"
)

// Event is a normalized device report. Events are ephemeral: they flow
// through the rule engine and are never persisted beyond logging.
type Event struct {
	DeviceID   string                 `json:"device_id"`
	EstateID   string                 `json:"estate_id,omitempty"`
	EventType  string                 `json:"event_type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Decision is the outcome of rule evaluation: either an immediate device
// command or a human-reviewable suggestion. Exactly two variants exist.
type Decision interface {
	decision()
}

// DeviceCommand is a decision executed immediately, without human review.
type DeviceCommand struct {
	DeviceID string                 `json:"device_id"`
	Command  map[string]interface{} `json:"command"`
	Priority string                 `json:"priority"`
}

func (DeviceCommand) decision() {}

// SuggestionDraft is a decision that must be reviewed by a person before
// any device is touched. The dispatcher persists it as a Suggestion.
type SuggestionDraft struct {
	TargetUserID string                 `json:"target_user_id"`
	Title        string                 `json:"title"`
	Message      string                 `json:"message"`
	Metadata     map[string]interface{} `json:"metadata"`
}

func (SuggestionDraft) decision() {}

// Suggestion statuses. A suggestion is created pending and transitions
// exactly once to accepted or dismissed.
const (
	SuggestionPending   = "pending"
	SuggestionAccepted  = "accepted"
	SuggestionDismissed = "dismissed"
)

// Suggestion is the persisted record of a SuggestionDraft.
type Suggestion struct {
	ID         string          `json:"id"`
	EstateID   string          `json:"estate_id"`
	DeviceID   string          `json:"device_id"`
	RuleID     string          `json:"rule_id"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Action     string          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

// ActionSpec is the action half of an automation: what to publish, where.
type ActionSpec struct {
	Type     string          `json:"type"` // "device" is the only executable type
	DeviceID string          `json:"device_id"`
	Command  json.RawMessage `json:"command"`
	Topic    string          `json:"topic,omitempty"` // explicit override of the set topic
}

// TriggerSpec describes when an automation fires. Schedule triggers are
// registered with the cron scheduler; other types are fired externally.
type TriggerSpec struct {
	Type string `json:"type"`
	Cron string `json:"cron,omitempty"`
}

// Automation is a stored trigger+action definition, executable by id
// through the job queue.
type Automation struct {
	ID        string          `json:"id"`
	EstateID  string          `json:"estate_id"`
	Name      string          `json:"name"`
	Trigger   json.RawMessage `json:"trigger"`
	Action    json.RawMessage `json:"action"`
	Enabled   bool            `json:"enabled"`
	CreatedBy string          `json:"created_by"`
}

// DeviceState is the last reported state of a device, upserted on every
// inbound state message. Rules never read it; it serves dashboards.
type DeviceState struct {
	DeviceID string          `json:"device_id"`
	Status   json.RawMessage `json:"status"`
	LastSeen time.Time       `json:"last_seen"`
}

// DeviceEvent is an audit log entry for actions executed against a device.
type DeviceEvent struct {
	ID       string          `json:"id"`
	DeviceID string          `json:"device_id"`
	UserID   string          `json:"user_id,omitempty"`
	Action   string          `json:"action"`
	Params   json.RawMessage `json:"params"`
}
