package consumers

import (
	"context"

	"github.com/nats-io/stan.go"

	"slotbook/internal/config"
	"slotbook/internal/logger"
	"slotbook/internal/messaging"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
)

const queueGroup = "notifier"

type NotificationService struct {
	nats     *messaging.NATSClient
	handlers *Handlers
	subs     []stan.Subscription
}

func NewNotificationService(cfg *config.Config, mailer Mailer, m *metrics.Metrics) (*NotificationService, error) {
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	return &NotificationService{
		nats:     natsClient,
		handlers: NewHandlers(mailer, m),
	}, nil
}

func (ns *NotificationService) Start() error {
	logger.Get().Info("Starting notification consumers...")

	for _, subject := range models.NotificationSubjects {
		sub, err := ns.nats.SubscribeQueue(subject, queueGroup, ns.handlers.Handle(subject))
		if err != nil {
			return err
		}
		ns.subs = append(ns.subs, sub)
	}

	logger.Get().Info("All consumers started", "subjects", len(ns.subs))
	return nil
}

// Shutdown closes subscriptions but keeps durable state on the server
func (ns *NotificationService) Shutdown(ctx context.Context) error {
	logger.Get().Info("Shutting down notification service...")

	for _, sub := range ns.subs {
		if err := sub.Close(); err != nil {
			logger.Get().Error("Error closing subscription", "error", err)
		}
	}

	if ns.nats != nil {
		if err := ns.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
			return err
		}
	}
	return nil
}
