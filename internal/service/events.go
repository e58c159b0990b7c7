package service

import (
	"context"
	"fmt"

	"slotbook/internal/models"
)

type EventService struct {
	events EventStore
}

func NewEventService(events EventStore) *EventService {
	return &EventService{events: events}
}

// Settings reads the current event switches once for a request.
// Without any event row booking is closed.
func (s *EventService) Settings(ctx context.Context) (models.EventSettings, error) {
	event, err := s.events.Current(ctx)
	if err != nil {
		return models.EventSettings{}, fmt.Errorf("failed to get current event: %w", err)
	}
	return event.Settings(), nil
}
