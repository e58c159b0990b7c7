package repository

import (
	"context"
	"database/sql"

	"slotbook/internal/database"
	"slotbook/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Current returns the most recently created event, or nil if none exists
func (r *EventRepository) Current(ctx context.Context) (*models.Event, error) {
	e := &models.Event{}
	query := `
		SELECT id, title, is_open, private_slots_enabled, created_at
		FROM events
		ORDER BY id DESC
		LIMIT 1`

	err := r.db.QueryRowContext(ctx, query).Scan(&e.ID, &e.Title, &e.IsOpen, &e.PrivateSlotsEnabled, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}
