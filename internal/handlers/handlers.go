package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "slotbook/internal/errors"
	"slotbook/internal/logger"
	"slotbook/internal/middleware"
	"slotbook/internal/service"
	"slotbook/internal/validation"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// respondError maps domain errors onto HTTP statuses; anything unknown is a 500
func respondError(c *gin.Context, err error, msg string) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrFlightNotFound),
		errors.Is(err, apperrors.ErrBookingNotFound),
		errors.Is(err, apperrors.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAlreadyBooked), errors.Is(err, apperrors.ErrFlightExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrBookingClosed), errors.Is(err, apperrors.ErrPrivateSlotsDisabled):
		c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// identity is set by RequireAuth on every route that calls this
func identity(c *gin.Context) middleware.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}
