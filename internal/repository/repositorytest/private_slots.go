package repositorytest

import (
	"context"
	"sort"
	"time"

	apperrors "slotbook/internal/errors"
	"slotbook/internal/models"
)

type PrivateSlots struct{ s *Store }

func (r *PrivateSlots) withName(p models.PrivateSlotRequest) models.PrivateSlotRequest {
	p.RequesterName = r.s.users[p.VID].Name
	return p
}

func (r *PrivateSlots) Create(_ context.Context, p *models.PrivateSlotRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.VID]; !ok {
		return apperrors.ErrUnauthorized
	}
	p.ID = r.s.nextID()
	p.CreatedAt = time.Now()
	r.s.slots[p.ID] = *p
	return nil
}

func (r *PrivateSlots) GetByID(_ context.Context, id int64) (*models.PrivateSlotRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.slots[id]
	if !ok {
		return nil, nil
	}
	p = r.withName(p)
	return &p, nil
}

func (r *PrivateSlots) List(_ context.Context, status string) ([]models.PrivateSlotRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.PrivateSlotRequest{}
	for _, p := range r.s.slots {
		if status == "" || p.Status == status {
			out = append(out, r.withName(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *PrivateSlots) UpdateStatus(_ context.Context, id int64, status string, rejection, cancellation *string) (*models.PrivateSlotRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.slots[id]
	if !ok {
		return nil, nil
	}
	ts := time.Now()
	p.Status = status
	p.RejectionReason = rejection
	p.CancellationReason = cancellation
	p.UpdatedAt = &ts
	r.s.slots[id] = p
	p = r.withName(p)
	return &p, nil
}

func (r *PrivateSlots) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.slots[id]; !ok {
		return false, nil
	}
	delete(r.s.slots, id)
	return true, nil
}

func (r *PrivateSlots) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.slots))
	r.s.slots = map[int64]models.PrivateSlotRequest{}
	return n, nil
}

func (r *PrivateSlots) CountByStatus(_ context.Context) (models.PrivateSlotStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats models.PrivateSlotStats
	for _, p := range r.s.slots {
		switch p.Status {
		case models.SlotStatusPending:
			stats.Pending++
		case models.SlotStatusApproved:
			stats.Approved++
		case models.SlotStatusRejected:
			stats.Rejected++
		case models.SlotStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}
