package handlers

import (
	"net/http"

	"slotbook/internal/models"

	"github.com/gin-gonic/gin"
)

// Timetable - GET /api/timetable?category=departure
// Получить расписание категории вместе с состоянием события
func (h *Handlers) Timetable(c *gin.Context) {
	ctx := c.Request.Context()
	category := c.DefaultQuery("category", models.CategoryDeparture)

	flights, err := h.services.Flights.Timetable(ctx, category)
	if err != nil {
		respondError(c, err, "Failed to load timetable")
		return
	}

	settings, err := h.services.Events.Settings(ctx)
	if err != nil {
		respondError(c, err, "Failed to load event settings")
		return
	}

	if flights == nil {
		flights = []models.TimetableEntry{}
	}
	c.JSON(http.StatusOK, models.TimetableResponse{
		Category: category,
		Settings: settings,
		Flights:  flights,
	})
}

// SearchTimetable - GET /api/timetable/search?q=&category=
func (h *Handlers) SearchTimetable(c *gin.Context) {
	flights, err := h.services.Flights.Search(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		respondError(c, err, "Failed to search timetable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"flights": flights})
}
