package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"estatecore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLister struct {
	automations []models.Automation
}

func (f *fakeLister) ListAutomations(_ context.Context, _ string) ([]models.Automation, error) {
	return f.automations, nil
}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []string
}

func (f *fakeQueue) EnqueueAutomation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, id)
	return nil
}

func (f *fakeQueue) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.enqueued...)
}

func TestLoadRegistersOnlyScheduleTriggers(t *testing.T) {
	lister := &fakeLister{automations: []models.Automation{
		{ID: "a1", Enabled: true, Trigger: []byte(`{"type":"schedule","cron":"@every 10ms"}`)},
		{ID: "a2", Enabled: true, Trigger: []byte(`{"type":"event"}`)},
		{ID: "a3", Enabled: false, Trigger: []byte(`{"type":"schedule","cron":"@every 10ms"}`)},
		{ID: "a4", Enabled: true, Trigger: []byte(`not json`)},
		{ID: "a5", Enabled: true, Trigger: []byte(`{"type":"schedule","cron":"bad cron"}`)},
	}}
	queue := &fakeQueue{}
	sched := New(lister, queue, zap.NewNop())

	require.NoError(t, sched.Load(context.Background()))
	sched.Start()
	defer sched.Stop()

	time.Sleep(50 * time.Millisecond)

	ids := queue.ids()
	assert.NotEmpty(t, ids, "schedule trigger should have fired")
	for _, id := range ids {
		assert.Equal(t, "a1", id, "only the enabled schedule automation may fire")
	}
}
