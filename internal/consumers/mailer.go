package consumers

import (
	"context"

	"slotbook/internal/logger"
)

// Mailer delivers a rendered notification
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes notifications to the log; real delivery lives outside this repo
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.WithContext(ctx).Info("Notification",
		"kind", msg.Kind,
		"vid", msg.To.VID,
		"email", msg.To.Email,
		"subject", msg.Subject,
		"body", msg.Body)
	return nil
}
