package db

import (
	"context"
	"errors"
	"time"

	"estatecore/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const suggestionColumns = "id, estate_id, device_id, rule_id, title, message, action, payload, status, created_at, resolved_at"

// InsertSuggestion creates a new pending suggestion and returns the stored row.
func (d *DB) InsertSuggestion(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := d.pool.QueryRow(ctx,
		`INSERT INTO suggestions (id, estate_id, device_id, rule_id, title, message, action, payload, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', NOW())
		 RETURNING `+suggestionColumns,
		s.ID, s.EstateID, s.DeviceID, s.RuleID, s.Title, s.Message, s.Action, s.Payload)
	return scanSuggestion(row)
}

// GetSuggestion fetches a suggestion by id.
func (d *DB) GetSuggestion(ctx context.Context, id string) (*models.Suggestion, error) {
	row := d.pool.QueryRow(ctx,
		"SELECT "+suggestionColumns+" FROM suggestions WHERE id = $1", id)
	return scanSuggestion(row)
}

// ListSuggestions fetches suggestions for an estate, optionally filtered by status.
func (d *DB) ListSuggestions(ctx context.Context, estateID, status string) ([]models.Suggestion, error) {
	query := "SELECT " + suggestionColumns + " FROM suggestions WHERE estate_id = $1"
	args := []interface{}{estateID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []models.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, *s)
	}
	return suggestions, rows.Err()
}

// ResolveSuggestion transitions a pending suggestion to the given terminal
// status. The WHERE clause makes the transition conditional, so concurrent
// accept/dismiss attempts on the same id cannot both succeed; the loser
// gets ErrNotFound, same as a missing row.
func (d *DB) ResolveSuggestion(ctx context.Context, id, status string) (*models.Suggestion, error) {
	row := d.pool.QueryRow(ctx,
		`UPDATE suggestions SET status = $2, resolved_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+suggestionColumns,
		id, status)
	return scanSuggestion(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSuggestion(row rowScanner) (*models.Suggestion, error) {
	var s models.Suggestion
	var resolvedAt *time.Time
	err := row.Scan(&s.ID, &s.EstateID, &s.DeviceID, &s.RuleID, &s.Title, &s.Message,
		&s.Action, &s.Payload, &s.Status, &s.CreatedAt, &resolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.ResolvedAt = resolvedAt
	return &s, nil
}
