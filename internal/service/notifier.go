package service

import (
	"context"
	"time"

	"slotbook/internal/logger"
	"slotbook/internal/metrics"
	"slotbook/internal/models"

	"github.com/google/uuid"
)

// notifier publishes member notifications. Failures are logged and counted,
// never returned to the caller.
type notifier struct {
	publisher Publisher
	users     UserStore
	metrics   *metrics.Metrics
}

func (n *notifier) recipient(ctx context.Context, vid int64) models.Recipient {
	user, err := n.users.GetByVID(ctx, vid)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to load notification recipient", "vid", vid, "error", err)
	}
	return models.RecipientFor(vid, user)
}

func (n *notifier) publish(ctx context.Context, subject string, event any) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(subject, event); err != nil {
		// Log error but don't fail the operation
		logger.WithContext(ctx).Error("Failed to publish notification",
			"error", err,
			"event_type", subject)
		n.metrics.Notification(subject, "failed")
		return
	}
	n.metrics.Notification(subject, "published")
}

func newMessageID() string {
	return uuid.New().String()
}

func now() time.Time {
	return time.Now().UTC()
}
