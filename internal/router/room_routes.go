package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/meeting-room-booking/internal/handler"
    "github.com/iliyamo/meeting-room-booking/internal/middleware"
    "github.com/iliyamo/meeting-room-booking/internal/model"
)

// RegisterRooms registers room catalogue endpoints under /v1. Reads are
// open to any authenticated user; mutations require the admin or
// facility_manager role.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
    mws := append([]echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}, extra...)
    g := e.Group("/v1", mws...)

    g.GET("/rooms", h.List)
    g.GET("/rooms/:id", h.Get)

    manage := middleware.RequireRole(model.RoleAdmin, model.RoleFacilityManager)
    g.POST("/rooms", h.Create, manage)
    g.PUT("/rooms/:id", h.Update, manage)
    g.DELETE("/rooms/:id", h.Delete, manage)
}
