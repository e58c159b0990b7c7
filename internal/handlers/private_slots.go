package handlers

import (
	"context"
	"net/http"

	"slotbook/internal/models"

	"github.com/gin-gonic/gin"
)

// Private slot handlers

// SubmitPrivateSlot - POST /api/private-slots
// Подать заявку на частный слот
func (h *Handlers) SubmitPrivateSlot(c *gin.Context) {
	var req models.PrivateSlotSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	settings, err := h.services.Events.Settings(ctx)
	if err != nil {
		respondError(c, err, "Failed to load event settings")
		return
	}

	p, err := h.services.PrivateSlots.Submit(ctx, settings, identity(c).UserID, &req)
	if err != nil {
		respondError(c, err, "Failed to submit private slot request")
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ListPrivateSlots - GET /api/admin/private-slots?status=pending
func (h *Handlers) ListPrivateSlots(c *gin.Context) {
	requests, err := h.services.PrivateSlots.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err, "Failed to list private slot requests")
		return
	}
	if requests == nil {
		requests = []models.PrivateSlotRequest{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// PrivateSlotStats - GET /api/admin/private-slots/stats
func (h *Handlers) PrivateSlotStats(c *gin.Context) {
	stats, err := h.services.PrivateSlots.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to count private slot requests")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ApprovePrivateSlot - POST /api/admin/private-slots/:id/approve
func (h *Handlers) ApprovePrivateSlot(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id int64, _ string) (*models.PrivateSlotRequest, error) {
		return h.services.PrivateSlots.Approve(ctx, id)
	})
}

// RejectPrivateSlot - POST /api/admin/private-slots/:id/reject
func (h *Handlers) RejectPrivateSlot(c *gin.Context) {
	h.transition(c, h.services.PrivateSlots.Reject)
}

// CancelPrivateSlot - POST /api/admin/private-slots/:id/cancel
func (h *Handlers) CancelPrivateSlot(c *gin.Context) {
	h.transition(c, h.services.PrivateSlots.Cancel)
}

type transitionFunc func(ctx context.Context, id int64, reason string) (*models.PrivateSlotRequest, error)

// transition: тело с причиной необязательно
func (h *Handlers) transition(c *gin.Context, apply transitionFunc) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req models.ReasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	p, err := apply(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err, "Failed to update private slot request")
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeletePrivateSlot - DELETE /api/admin/private-slots/:id
func (h *Handlers) DeletePrivateSlot(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.services.PrivateSlots.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete private slot request")
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearPrivateSlots - DELETE /api/admin/private-slots
func (h *Handlers) ClearPrivateSlots(c *gin.Context) {
	n, err := h.services.PrivateSlots.ClearAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to clear private slot requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
