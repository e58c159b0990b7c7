package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "slotbook/internal/errors"
	"slotbook/internal/logger"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
	"slotbook/internal/validation"
)

type PrivateSlotService struct {
	requests PrivateSlotStore
	notify   *notifier
}

func NewPrivateSlotService(requests PrivateSlotStore, users UserStore, publisher Publisher, m *metrics.Metrics) *PrivateSlotService {
	return &PrivateSlotService{
		requests: requests,
		notify:   &notifier{publisher: publisher, users: users, metrics: m},
	}
}

// Submit files a pending request. Requests are accepted only while the
// event is open and private slots are enabled.
func (s *PrivateSlotService) Submit(ctx context.Context, settings models.EventSettings, userID int64, req *models.PrivateSlotSubmitRequest) (*models.PrivateSlotRequest, error) {
	if !settings.PrivateSlotsEnabled || !settings.IsOpen {
		return nil, apperrors.ErrPrivateSlotsDisabled
	}
	if err := validation.ValidatePrivateSlot(req); err != nil {
		return nil, err
	}

	p := &models.PrivateSlotRequest{
		VID:               userID,
		FlightNumber:      req.FlightNumber,
		AircraftType:      req.AircraftType,
		OriginICAO:        req.OriginICAO,
		DestinationICAO:   req.DestinationICAO,
		DepartureTimeZulu: req.DepartureTimeZulu,
		Status:            models.SlotStatusPending,
	}
	if err := s.requests.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to submit private slot request: %w", err)
	}

	logger.WithContext(ctx).Info("Private slot requested", "request_id", p.ID, "flight_number", p.FlightNumber)
	return p, nil
}

func (s *PrivateSlotService) Approve(ctx context.Context, id int64) (*models.PrivateSlotRequest, error) {
	return s.transition(ctx, id, models.SlotStatusApproved, models.EventPrivateSlotApproved, nil, nil)
}

func (s *PrivateSlotService) Reject(ctx context.Context, id int64, reason string) (*models.PrivateSlotRequest, error) {
	return s.transition(ctx, id, models.SlotStatusRejected, models.EventPrivateSlotRejected, reasonPtr(reason), nil)
}

func (s *PrivateSlotService) Cancel(ctx context.Context, id int64, reason string) (*models.PrivateSlotRequest, error) {
	return s.transition(ctx, id, models.SlotStatusCancelled, models.EventPrivateSlotCancelled, nil, reasonPtr(reason))
}

func reasonPtr(reason string) *string {
	reason = strings.TrimSpace(reason)
	return &reason
}

// transition applies status from any current status, re-entry included,
// and notifies the requester every time.
func (s *PrivateSlotService) transition(ctx context.Context, id int64, status, subject string, rejection, cancellation *string) (*models.PrivateSlotRequest, error) {
	p, err := s.requests.UpdateStatus(ctx, id, status, rejection, cancellation)
	if err != nil {
		return nil, fmt.Errorf("failed to update private slot request: %w", err)
	}
	if p == nil {
		return nil, apperrors.ErrRequestNotFound
	}

	logger.WithContext(ctx).Info("Private slot request updated", "request_id", id, "status", status)

	s.notify.publish(ctx, subject, models.PrivateSlotEvent{
		MessageID: newMessageID(),
		Request:   *p,
		Recipient: s.notify.recipient(ctx, p.VID),
		Timestamp: now(),
	})
	return p, nil
}

func (s *PrivateSlotService) Get(ctx context.Context, id int64) (*models.PrivateSlotRequest, error) {
	p, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get private slot request: %w", err)
	}
	if p == nil {
		return nil, apperrors.ErrRequestNotFound
	}
	return p, nil
}

func (s *PrivateSlotService) List(ctx context.Context, status string) ([]models.PrivateSlotRequest, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", models.SlotStatusPending, models.SlotStatusApproved, models.SlotStatusRejected, models.SlotStatusCancelled:
	default:
		return nil, &validation.Error{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	requests, err := s.requests.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list private slot requests: %w", err)
	}
	return requests, nil
}

func (s *PrivateSlotService) Stats(ctx context.Context) (models.PrivateSlotStats, error) {
	stats, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to count private slot requests: %w", err)
	}
	return stats, nil
}

func (s *PrivateSlotService) Delete(ctx context.Context, id int64) error {
	ok, err := s.requests.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete private slot request: %w", err)
	}
	if !ok {
		return apperrors.ErrRequestNotFound
	}
	return nil
}

func (s *PrivateSlotService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.requests.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear private slot requests: %w", err)
	}
	return n, nil
}
