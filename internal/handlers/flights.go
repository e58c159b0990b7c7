package handlers

import (
	"net/http"

	"slotbook/internal/models"

	"github.com/gin-gonic/gin"
)

// maxImportSize bounds the multipart upload
const maxImportSize = 8 << 20

// CreateFlight - POST /api/admin/flights
func (h *Handlers) CreateFlight(c *gin.Context) {
	var req models.FlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.services.Flights.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create flight")
		return
	}

	c.JSON(http.StatusCreated, flight)
}

// UpdateFlight - PUT /api/admin/flights/:id
// Изменить рейс; забронировавший участник получит уведомление об изменениях
func (h *Handlers) UpdateFlight(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req models.FlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.services.Flights.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update flight")
		return
	}

	c.JSON(http.StatusOK, flight)
}

// DeleteFlight - DELETE /api/admin/flights/:id
func (h *Handlers) DeleteFlight(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.services.Flights.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete flight")
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearFlights - DELETE /api/admin/flights
// Удалить всё расписание вместе с бронированиями
func (h *Handlers) ClearFlights(c *gin.Context) {
	n, err := h.services.Flights.ClearAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to clear timetable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// ImportFlights - POST /api/admin/flights/import (multipart, field "csv")
func (h *Handlers) ImportFlights(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	header, err := c.FormFile("csv")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	report, err := h.services.Flights.Import(c.Request.Context(), file)
	if err != nil {
		respondError(c, err, "Failed to import timetable")
		return
	}

	c.JSON(http.StatusOK, report)
}

// SyncAirlines - POST /api/admin/airlines/sync
// Привести названия и коды авиакомпаний в расписании к каноническим
func (h *Handlers) SyncAirlines(c *gin.Context) {
	report, err := h.services.Airlines.SyncAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to sync airlines")
		return
	}
	c.JSON(http.StatusOK, report)
}

// Reindex - POST /api/admin/flights/reindex
func (h *Handlers) Reindex(c *gin.Context) {
	n, err := h.services.Flights.Reindex(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to reindex timetable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"indexed": n})
}
