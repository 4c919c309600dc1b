package scheduler

import (
	"context"
	"encoding/json"

	"estatecore/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AutomationLister loads the automations to schedule.
type AutomationLister interface {
	ListAutomations(ctx context.Context, estateID string) ([]models.Automation, error)
}

// Enqueuer queues an automation run.
type Enqueuer interface {
	EnqueueAutomation(ctx context.Context, automationID string) error
}

// Scheduler registers automations with a schedule trigger as cron jobs.
// Firing a job only enqueues; execution and retry stay in the worker.
type Scheduler struct {
	cron  *cron.Cron
	store AutomationLister
	queue Enqueuer
	log   *zap.Logger
}

func New(store AutomationLister, queue Enqueuer, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		store: store,
		queue: queue,
		log:   log,
	}
}

// Load registers every enabled automation whose trigger is
// {"type":"schedule","cron":"..."}.
func (s *Scheduler) Load(ctx context.Context) error {
	automations, err := s.store.ListAutomations(ctx, "")
	if err != nil {
		return err
	}

	registered := 0
	for _, a := range automations {
		if !a.Enabled {
			continue
		}
		var trigger models.TriggerSpec
		if err := json.Unmarshal(a.Trigger, &trigger); err != nil {
			s.log.Warn("unparsable automation trigger",
				zap.String("automation_id", a.ID), zap.Error(err))
			continue
		}
		if trigger.Type != "schedule" || trigger.Cron == "" {
			continue
		}

		automationID := a.ID
		_, err := s.cron.AddFunc(trigger.Cron, func() {
			if err := s.queue.EnqueueAutomation(context.Background(), automationID); err != nil {
				s.log.Error("scheduled enqueue failed",
					zap.String("automation_id", automationID), zap.Error(err))
			}
		})
		if err != nil {
			s.log.Warn("invalid cron expression",
				zap.String("automation_id", a.ID),
				zap.String("cron", trigger.Cron), zap.Error(err))
			continue
		}
		registered++
	}

	s.log.Info("schedule triggers registered", zap.Int("count", registered))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
