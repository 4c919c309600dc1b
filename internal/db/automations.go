package db

import (
	"context"
	"encoding/json"
	"errors"

	"estatecore/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetAutomationByID fetches an automation
func (d *DB) GetAutomationByID(ctx context.Context, id string) (*models.Automation, error) {
	var a models.Automation
	err := d.pool.QueryRow(ctx,
		"SELECT id, estate_id, name, trigger, action, enabled, created_by FROM automations WHERE id = $1", id).
		Scan(&a.ID, &a.EstateID, &a.Name, &a.Trigger, &a.Action, &a.Enabled, &a.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListAutomations fetches automations, optionally scoped to an estate
func (d *DB) ListAutomations(ctx context.Context, estateID string) ([]models.Automation, error) {
	query := "SELECT id, estate_id, name, trigger, action, enabled, created_by FROM automations"
	var args []interface{}
	if estateID != "" {
		query += " WHERE estate_id = $1"
		args = append(args, estateID)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var automations []models.Automation
	for rows.Next() {
		var a models.Automation
		if err := rows.Scan(&a.ID, &a.EstateID, &a.Name, &a.Trigger, &a.Action, &a.Enabled, &a.CreatedBy); err != nil {
			return nil, err
		}
		automations = append(automations, a)
	}
	return automations, rows.Err()
}

// InsertAutomation creates an automation and returns the stored row
func (d *DB) InsertAutomation(ctx context.Context, a *models.Automation) (*models.Automation, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var out models.Automation
	err := d.pool.QueryRow(ctx,
		`INSERT INTO automations (id, estate_id, name, trigger, action, enabled, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, estate_id, name, trigger, action, enabled, created_by`,
		a.ID, a.EstateID, a.Name, a.Trigger, a.Action, a.Enabled, a.CreatedBy).
		Scan(&out.ID, &out.EstateID, &out.Name, &out.Trigger, &out.Action, &out.Enabled, &out.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertDeviceState records the latest reported state for a device
func (d *DB) UpsertDeviceState(ctx context.Context, deviceID string, status json.RawMessage) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO device_states (device_id, status, last_seen) VALUES ($1, $2, NOW())
		 ON CONFLICT (device_id) DO UPDATE SET status = EXCLUDED.status, last_seen = NOW()`,
		deviceID, status)
	return err
}

// GetDeviceEstate resolves the estate owning a device
func (d *DB) GetDeviceEstate(ctx context.Context, deviceID string) (string, error) {
	var estateID string
	err := d.pool.QueryRow(ctx,
		"SELECT estate_id FROM devices WHERE id = $1", deviceID).Scan(&estateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return estateID, nil
}

// LogDeviceEvent appends to the device event log
func (d *DB) LogDeviceEvent(ctx context.Context, deviceID, userID, action string, params json.RawMessage) error {
	_, err := d.pool.Exec(ctx,
		"INSERT INTO device_events (device_id, user_id, action, params, created_at) VALUES ($1, NULLIF($2, ''), $3, $4, NOW())",
		deviceID, userID, action, params)
	return err
}
