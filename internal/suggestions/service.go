package suggestions

import (
	"context"
	"errors"
	"fmt"

	"estatecore/internal/db"
	"estatecore/internal/models"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a suggestion is absent or already resolved.
// Both cases look identical to the conditional update, which is what
// serializes concurrent accept/dismiss attempts per id.
var ErrNotFound = errors.New("suggestions: not found or already resolved")

// Store performs the conditional pending→terminal transition.
type Store interface {
	GetSuggestion(ctx context.Context, id string) (*models.Suggestion, error)
	ResolveSuggestion(ctx context.Context, id, status string) (*models.Suggestion, error)
	ListSuggestions(ctx context.Context, estateID, status string) ([]models.Suggestion, error)
}

// Notifier pushes status updates to dashboard rooms.
type Notifier interface {
	Emit(ctx context.Context, room, event string, payload interface{}) error
}

// Enqueuer queues the accepted suggestion's device action for durable
// execution.
type Enqueuer interface {
	EnqueueSuggestionAction(ctx context.Context, s *models.Suggestion) error
}

// Service implements the operator-facing suggestion lifecycle.
type Service struct {
	store    Store
	notifier Notifier
	queue    Enqueuer
	log      *zap.Logger
}

func NewService(store Store, notifier Notifier, queue Enqueuer, log *zap.Logger) *Service {
	return &Service{store: store, notifier: notifier, queue: queue, log: log}
}

// Accept transitions a pending suggestion to accepted, notifies the estate
// room, and enqueues the underlying device action. The returned record
// gives the caller the action/device reference for immediate feedback.
func (s *Service) Accept(ctx context.Context, id string) (*models.Suggestion, error) {
	resolved, err := s.resolve(ctx, id, models.SuggestionAccepted)
	if err != nil {
		return nil, err
	}

	if err := s.queue.EnqueueSuggestionAction(ctx, resolved); err != nil {
		s.log.Error("accepted suggestion enqueue failed",
			zap.String("suggestion_id", id), zap.Error(err))
		return nil, fmt.Errorf("enqueue accepted suggestion %s: %w", id, err)
	}

	return resolved, nil
}

// Dismiss transitions a pending suggestion to dismissed and notifies the
// estate room. No job is enqueued.
func (s *Service) Dismiss(ctx context.Context, id string) (*models.Suggestion, error) {
	return s.resolve(ctx, id, models.SuggestionDismissed)
}

// List returns suggestions for an estate, optionally filtered by status.
func (s *Service) List(ctx context.Context, estateID, status string) ([]models.Suggestion, error) {
	return s.store.ListSuggestions(ctx, estateID, status)
}

func (s *Service) resolve(ctx context.Context, id, status string) (*models.Suggestion, error) {
	resolved, err := s.store.ResolveSuggestion(ctx, id, status)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve suggestion %s: %w", id, err)
	}

	update := map[string]string{"id": resolved.ID, "status": resolved.Status}
	if err := s.notifier.Emit(ctx, "estate:"+resolved.EstateID, "suggestion:update", update); err != nil {
		s.log.Warn("suggestion status fan-out failed",
			zap.String("suggestion_id", id), zap.Error(err))
	}

	s.log.Info("suggestion resolved",
		zap.String("suggestion_id", id), zap.String("status", status))
	return resolved, nil
}
