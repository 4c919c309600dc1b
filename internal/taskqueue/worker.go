package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"estatecore/internal/gateway"
	"estatecore/internal/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AutomationStore resolves automation definitions and records runs.
type AutomationStore interface {
	GetAutomationByID(ctx context.Context, id string) (*models.Automation, error)
	LogDeviceEvent(ctx context.Context, deviceID, userID, action string, params json.RawMessage) error
}

// Publisher publishes the resulting device command.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// RunHandler executes automation jobs. Publish and lookup errors are
// returned to asynq for retry with backoff; unsupported actions fail
// terminally via SkipRetry.
type RunHandler struct {
	topicRoot string
	store     AutomationStore
	publisher Publisher
	log       *zap.Logger
}

func NewRunHandler(topicRoot string, store AutomationStore, publisher Publisher, log *zap.Logger) *RunHandler {
	return &RunHandler{topicRoot: topicRoot, store: store, publisher: publisher, log: log}
}

// ProcessTask implements asynq.Handler.
func (h *RunHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload RunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal job payload: %v: %w", err, asynq.SkipRetry)
	}

	action := payload.Action
	estateID := payload.EstateID
	createdBy := ""

	if action == nil {
		automation, err := h.store.GetAutomationByID(ctx, payload.AutomationID)
		if err != nil {
			return fmt.Errorf("resolve automation %s: %w", payload.AutomationID, err)
		}
		if !automation.Enabled {
			h.log.Info("automation disabled, skipping",
				zap.String("automation_id", automation.ID))
			return nil
		}
		var spec models.ActionSpec
		if err := json.Unmarshal(automation.Action, &spec); err != nil {
			return fmt.Errorf("parse action of automation %s: %v: %w", automation.ID, err, asynq.SkipRetry)
		}
		action = &spec
		estateID = automation.EstateID
		createdBy = automation.CreatedBy
	}

	if action.Type != "device" {
		h.log.Warn("unsupported automation action type",
			zap.String("type", action.Type),
			zap.String("automation_id", payload.AutomationID))
		return fmt.Errorf("unsupported action type %q: %w", action.Type, asynq.SkipRetry)
	}

	topic := action.Topic
	if topic == "" {
		topic = gateway.SetTopic(h.topicRoot, estateID, action.DeviceID)
	}

	if err := h.publisher.Publish(topic, action.Command); err != nil {
		return fmt.Errorf("publish automation command: %w", err)
	}

	if err := h.store.LogDeviceEvent(ctx, action.DeviceID, createdBy, "automation_run", action.Command); err != nil {
		// The command already went out; a missing log row is not worth a retry.
		h.log.Error("device event log failed",
			zap.String("device_id", action.DeviceID), zap.Error(err))
	}

	h.log.Info("automation run completed",
		zap.String("automation_id", payload.AutomationID),
		zap.String("suggestion_id", payload.SuggestionID),
		zap.String("topic", topic))
	return nil
}

// Worker owns the asynq server consuming the automation queue.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
	log *zap.Logger
}

func NewWorker(redisAddr string, concurrency int, handler *RunHandler, log *zap.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 2
	}
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{Concurrency: concurrency},
	)
	mux := asynq.NewServeMux()
	mux.Handle(TypeRunAutomation, handler)
	return &Worker{srv: srv, mux: mux, log: log}
}

// Start runs the worker loop in the background.
func (w *Worker) Start() error {
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("start automation workers: %w", err)
	}
	w.log.Info("automation workers started")
	return nil
}

// Shutdown waits for in-flight jobs and stops the worker loop.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
	w.log.Info("automation workers stopped")
}
