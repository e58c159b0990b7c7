package handlers

import (
	"slotbook/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API. SessionAuth must already run on api.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/timetable", h.Timetable)
	api.GET("/timetable/search", h.SearchTimetable)

	member := api.Group("", middleware.RequireAuth())
	{
		member.POST("/flights/:id/booking", h.Book)
		member.DELETE("/flights/:id/booking", h.Unbook)
		member.GET("/bookings", h.ListBookings)
		member.POST("/private-slots", h.SubmitPrivateSlot)
	}

	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/flights", h.CreateFlight)
		admin.PUT("/flights/:id", h.UpdateFlight)
		admin.DELETE("/flights/:id", h.DeleteFlight)
		admin.DELETE("/flights", h.ClearFlights)
		admin.POST("/flights/import", h.ImportFlights)
		admin.POST("/flights/reindex", h.Reindex)
		admin.POST("/airlines/sync", h.SyncAirlines)
	}

	slots := api.Group("/admin/private-slots", middleware.RequirePrivateAdmin())
	{
		slots.GET("", h.ListPrivateSlots)
		slots.GET("/stats", h.PrivateSlotStats)
		slots.POST("/:id/approve", h.ApprovePrivateSlot)
		slots.POST("/:id/reject", h.RejectPrivateSlot)
		slots.POST("/:id/cancel", h.CancelPrivateSlot)
		slots.DELETE("/:id", h.DeletePrivateSlot)
		slots.DELETE("", h.ClearPrivateSlots)
	}
}
