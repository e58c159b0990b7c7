package handlers

import (
	"net/http"

	"slotbook/internal/models"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// Book - POST /api/flights/:id/booking
// Забронировать рейс
func (h *Handlers) Book(c *gin.Context) {
	flightID, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	settings, err := h.services.Events.Settings(ctx)
	if err != nil {
		respondError(c, err, "Failed to load event settings")
		return
	}

	booking, err := h.services.Bookings.Book(ctx, settings, flightID, identity(c).UserID)
	if err != nil {
		respondError(c, err, "Failed to book flight")
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// Unbook - DELETE /api/flights/:id/booking
// Отменить бронирование; администратор может снять чужую бронь
func (h *Handlers) Unbook(c *gin.Context) {
	flightID, ok := idParam(c)
	if !ok {
		return
	}
	id := identity(c)

	removed, err := h.services.Bookings.Unbook(c.Request.Context(), flightID, id.UserID, id.IsAdmin)
	if err != nil {
		respondError(c, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, removed)
}

// ListBookings - GET /api/bookings
// Рейсы, забронированные текущим участником
func (h *Handlers) ListBookings(c *gin.Context) {
	entries, err := h.services.Bookings.ListForUser(c.Request.Context(), identity(c).UserID)
	if err != nil {
		respondError(c, err, "Failed to list bookings")
		return
	}
	if entries == nil {
		entries = []models.TimetableEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": entries})
}
