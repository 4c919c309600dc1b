package suggestions

import (
	"context"
	"testing"
	"time"

	"estatecore/internal/db"
	"estatecore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore mimics the conditional update: the first resolve of a pending
// suggestion wins, every later attempt gets db.ErrNotFound.
type fakeStore struct {
	suggestion *models.Suggestion
}

func (f *fakeStore) GetSuggestion(_ context.Context, id string) (*models.Suggestion, error) {
	if f.suggestion == nil || f.suggestion.ID != id {
		return nil, db.ErrNotFound
	}
	return f.suggestion, nil
}

func (f *fakeStore) ResolveSuggestion(_ context.Context, id, status string) (*models.Suggestion, error) {
	if f.suggestion == nil || f.suggestion.ID != id || f.suggestion.Status != models.SuggestionPending {
		return nil, db.ErrNotFound
	}
	now := time.Now()
	f.suggestion.Status = status
	f.suggestion.ResolvedAt = &now
	return f.suggestion, nil
}

func (f *fakeStore) ListSuggestions(_ context.Context, estateID, status string) ([]models.Suggestion, error) {
	return nil, nil
}

type fakeNotifier struct {
	rooms  []string
	events []string
}

func (f *fakeNotifier) Emit(_ context.Context, room, event string, _ interface{}) error {
	f.rooms = append(f.rooms, room)
	f.events = append(f.events, event)
	return nil
}

type fakeQueue struct {
	enqueued []string
}

func (f *fakeQueue) EnqueueSuggestionAction(_ context.Context, s *models.Suggestion) error {
	f.enqueued = append(f.enqueued, s.ID)
	return nil
}

func pendingSuggestion() *models.Suggestion {
	return &models.Suggestion{
		ID:       "sug-1",
		EstateID: "est-1",
		DeviceID: "cam-7",
		RuleID:   "suspicious_motion_alert",
		Action:   "notify",
		Payload:  []byte(`{"device_id":"cam-7"}`),
		Status:   models.SuggestionPending,
	}
}

func TestAcceptTransitionsAndEnqueues(t *testing.T) {
	store := &fakeStore{suggestion: pendingSuggestion()}
	notifier := &fakeNotifier{}
	queue := &fakeQueue{}
	svc := NewService(store, notifier, queue, zap.NewNop())

	resolved, err := svc.Accept(context.Background(), "sug-1")
	require.NoError(t, err)

	assert.Equal(t, models.SuggestionAccepted, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "cam-7", resolved.DeviceID)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "suggestion:update", notifier.events[0])
	assert.Equal(t, "estate:est-1", notifier.rooms[0])

	assert.Equal(t, []string{"sug-1"}, queue.enqueued)
}

func TestAcceptTwiceEnqueuesExactlyOnce(t *testing.T) {
	store := &fakeStore{suggestion: pendingSuggestion()}
	queue := &fakeQueue{}
	svc := NewService(store, &fakeNotifier{}, queue, zap.NewNop())

	_, err := svc.Accept(context.Background(), "sug-1")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), "sug-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, queue.enqueued, 1)
	assert.Equal(t, models.SuggestionAccepted, store.suggestion.Status)
}

func TestDismissTransitionsWithoutEnqueue(t *testing.T) {
	store := &fakeStore{suggestion: pendingSuggestion()}
	notifier := &fakeNotifier{}
	queue := &fakeQueue{}
	svc := NewService(store, notifier, queue, zap.NewNop())

	resolved, err := svc.Dismiss(context.Background(), "sug-1")
	require.NoError(t, err)

	assert.Equal(t, models.SuggestionDismissed, resolved.Status)
	assert.Equal(t, []string{"suggestion:update"}, notifier.events)
	assert.Empty(t, queue.enqueued)
}

func TestDismissAfterAcceptFailsWithoutMutation(t *testing.T) {
	store := &fakeStore{suggestion: pendingSuggestion()}
	queue := &fakeQueue{}
	svc := NewService(store, &fakeNotifier{}, queue, zap.NewNop())

	_, err := svc.Accept(context.Background(), "sug-1")
	require.NoError(t, err)

	_, err = svc.Dismiss(context.Background(), "sug-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.SuggestionAccepted, store.suggestion.Status)
}

func TestAcceptUnknownSuggestion(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeNotifier{}, &fakeQueue{}, zap.NewNop())

	_, err := svc.Accept(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
