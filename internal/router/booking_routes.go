package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/meeting-room-booking/internal/handler"
    "github.com/iliyamo/meeting-room-booking/internal/middleware"
    "github.com/iliyamo/meeting-room-booking/internal/model"
)

// RegisterBookings registers the booking endpoints under /v1. Any
// authenticated role can create, update and cancel its own bookings and
// query availability; the cross-user listings are limited to oversight
// roles. Ownership checks for update/cancel happen in the handler because
// they need the booking row.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
    mws := append([]echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}, extra...)
    g := e.Group("/v1", mws...)

    g.POST("/bookings", h.Create)
    g.PUT("/bookings/:id", h.Update)
    g.DELETE("/bookings/:id", h.Cancel)
    g.GET("/bookings/availability", h.Availability)
    g.GET("/my-bookings", h.ListMine)

    g.GET("/bookings", h.ListAll,
        middleware.RequireRole(model.RoleAdmin, model.RoleFacilityManager, model.RoleAuditor))
    g.GET("/bookings/user/:id", h.ListForUser,
        middleware.RequireRole(model.RoleAdmin, model.RoleAuditor))
}
