package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"

	"estatecore/internal/gateway"
	"estatecore/internal/models"

	"go.uber.org/zap"
)

// Publisher publishes a command on the device channel.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// SuggestionStore persists new suggestions.
type SuggestionStore interface {
	InsertSuggestion(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error)
}

// Notifier fans created suggestions out to dashboard rooms.
type Notifier interface {
	Emit(ctx context.Context, room, event string, payload interface{}) error
}

// Dispatcher executes rule decisions. Commands go straight to the device
// channel; suggestions are persisted for review and then pushed realtime.
// There is no transactional guarantee across the two suggestion side
// effects, but the push never happens for an unsaved record.
type Dispatcher struct {
	topicRoot string
	publisher Publisher
	store     SuggestionStore
	notifier  Notifier
	log       *zap.Logger
}

func New(topicRoot string, publisher Publisher, store SuggestionStore, notifier Notifier, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		topicRoot: topicRoot,
		publisher: publisher,
		store:     store,
		notifier:  notifier,
		log:       log,
	}
}

// Dispatch executes a decision for the event that produced it.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.Event, decision models.Decision) error {
	switch dec := decision.(type) {
	case models.DeviceCommand:
		return d.dispatchCommand(dec)
	case models.SuggestionDraft:
		return d.dispatchSuggestion(ctx, event, dec)
	case nil:
		return nil
	default:
		return fmt.Errorf("dispatch: unknown decision type %T", decision)
	}
}

// dispatchCommand publishes immediately and does not retry: the durable
// retry path is the job queue, reached via accepted suggestions and
// manual triggers.
func (d *Dispatcher) dispatchCommand(cmd models.DeviceCommand) error {
	payload, err := json.Marshal(cmd.Command)
	if err != nil {
		return fmt.Errorf("marshal command for %s: %w", cmd.DeviceID, err)
	}
	topic := gateway.CommandTopic(d.topicRoot, cmd.DeviceID)
	if err := d.publisher.Publish(topic, payload); err != nil {
		d.log.Error("device command publish failed",
			zap.String("topic", topic),
			zap.String("device_id", cmd.DeviceID),
			zap.Error(err))
		return nil
	}
	d.log.Info("device command published",
		zap.String("topic", topic),
		zap.String("priority", cmd.Priority))
	return nil
}

func (d *Dispatcher) dispatchSuggestion(ctx context.Context, event models.Event, draft models.SuggestionDraft) error {
	metadata, err := json.Marshal(draft.Metadata)
	if err != nil {
		return fmt.Errorf("marshal suggestion metadata: %w", err)
	}
	ruleID, _ := draft.Metadata["rule_triggered"].(string)

	record := &models.Suggestion{
		EstateID: event.EstateID,
		DeviceID: event.DeviceID,
		RuleID:   ruleID,
		Title:    draft.Title,
		Message:  draft.Message,
		Action:   "notify",
		Payload:  metadata,
	}

	created, err := d.store.InsertSuggestion(ctx, record)
	if err != nil {
		// No realtime push for an unsaved record.
		return fmt.Errorf("persist suggestion: %w", err)
	}

	if err := d.notifier.Emit(ctx, "estate:"+created.EstateID, "suggestion:new", created); err != nil {
		d.log.Warn("suggestion fan-out failed",
			zap.String("suggestion_id", created.ID), zap.Error(err))
	}
	if draft.TargetUserID != "" {
		if err := d.notifier.Emit(ctx, "user:"+draft.TargetUserID, "suggestion:new", created); err != nil {
			d.log.Warn("suggestion user fan-out failed",
				zap.String("suggestion_id", created.ID), zap.Error(err))
		}
	}
	return nil
}
