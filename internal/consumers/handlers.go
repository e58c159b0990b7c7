package consumers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/stan.go"

	"slotbook/internal/logger"
	"slotbook/internal/metrics"
)

// ErrNoAddress marks a notification for a member without an email
var ErrNoAddress = errors.New("recipient has no email")

type Handlers struct {
	mailer  Mailer
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewHandlers(mailer Mailer, m *metrics.Metrics) *Handlers {
	return &Handlers{mailer: mailer, metrics: m, timeout: 10 * time.Second}
}

// Process renders and delivers one event. A returned error means the
// message should be redelivered.
func (h *Handlers) Process(ctx context.Context, subject string, data []byte) error {
	log := logger.WithContext(ctx).With("subject", subject)

	msg, err := Build(subject, data)
	if err != nil {
		// redelivery will not fix a malformed payload
		log.Error("Dropping undecodable notification", "error", err)
		h.metrics.Notification(subject, "dropped")
		return nil
	}

	if msg.To.Email == "" {
		log.Warn("Skipping notification", "vid", msg.To.VID, "error", ErrNoAddress)
		h.metrics.Notification(subject, "skipped")
		return nil
	}

	if err := h.mailer.Send(ctx, *msg); err != nil {
		h.metrics.Notification(subject, "error")
		return fmt.Errorf("failed to deliver %s to %d: %w", subject, msg.To.VID, err)
	}

	h.metrics.Notification(subject, "delivered")
	return nil
}

// Handle adapts Process to a manual-ack subscription
func (h *Handlers) Handle(subject string) stan.MsgHandler {
	return func(m *stan.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		ctx = logger.ContextWithRequestID(ctx, logger.NewRequestID())

		if err := h.Process(ctx, subject, m.Data); err != nil {
			logger.WithContext(ctx).Error("Notification failed, awaiting redelivery",
				"subject", subject,
				"sequence", m.Sequence,
				"error", err)
			return
		}

		if err := m.Ack(); err != nil {
			logger.WithContext(ctx).Error("Failed to ack message", "subject", subject, "error", err)
		}
	}
}
