package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estatecore/internal/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeRunAutomation executes a stored automation or an inline device action.
const TypeRunAutomation = "automation:run"

// RunPayload is the job body. Either AutomationID is set (stored
// automation, resolved at execution time) or Action carries the device
// action inline (accepted suggestions).
type RunPayload struct {
	AutomationID string             `json:"automation_id,omitempty"`
	SuggestionID string             `json:"suggestion_id,omitempty"`
	EstateID     string             `json:"estate_id,omitempty"`
	Action       *models.ActionSpec `json:"action,omitempty"`
}

// Client enqueues automation jobs onto the durable queue.
type Client struct {
	client   *asynq.Client
	maxRetry int
	log      *zap.Logger
}

func NewClient(redisAddr string, maxRetry int, log *zap.Logger) *Client {
	return &Client{
		client:   asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		maxRetry: maxRetry,
		log:      log,
	}
}

// EnqueueAutomation queues a stored automation for execution by id.
func (c *Client) EnqueueAutomation(ctx context.Context, automationID string) error {
	return c.enqueue(ctx, RunPayload{AutomationID: automationID})
}

// EnqueueSuggestionAction queues the device action of an accepted
// suggestion, so "operator clicked accept" is decoupled from "device is
// currently reachable".
func (c *Client) EnqueueSuggestionAction(ctx context.Context, s *models.Suggestion) error {
	command, err := json.Marshal(map[string]interface{}{
		"action":  s.Action,
		"payload": json.RawMessage(s.Payload),
	})
	if err != nil {
		return fmt.Errorf("marshal suggestion %s action: %w", s.ID, err)
	}
	return c.enqueue(ctx, RunPayload{
		SuggestionID: s.ID,
		EstateID:     s.EstateID,
		Action: &models.ActionSpec{
			Type:     "device",
			DeviceID: s.DeviceID,
			Command:  command,
		},
	})
}

func (c *Client) enqueue(ctx context.Context, payload RunPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}
	task := asynq.NewTask(TypeRunAutomation, body)
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(c.maxRetry),
		asynq.Timeout(30*time.Second),
		asynq.Retention(24*time.Hour))
	if err != nil {
		return fmt.Errorf("enqueue automation job: %w", err)
	}
	c.log.Info("automation job enqueued",
		zap.String("job_id", info.ID),
		zap.String("automation_id", payload.AutomationID),
		zap.String("suggestion_id", payload.SuggestionID))
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
