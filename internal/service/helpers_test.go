package service_test

import (
	"io"
	"testing"

	"slotbook/internal/logger"
	"slotbook/internal/messaging/messagingtest"
	"slotbook/internal/metrics"
	"slotbook/internal/repository/repositorytest"
	"slotbook/internal/service"
)

type fixture struct {
	store    *repositorytest.Store
	pub      *messagingtest.Recorder
	metrics  *metrics.Metrics
	services *service.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.InitWriter(io.Discard, "error", "json")

	store := repositorytest.New()
	pub := &messagingtest.Recorder{}
	m := metrics.New()

	return &fixture{
		store:    store,
		pub:      pub,
		metrics:  m,
		services: service.NewServices(store.Stores(), pub, nil, m),
	}
}
