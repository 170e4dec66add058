package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/meeting-room-booking/internal/handler"
    "github.com/iliyamo/meeting-room-booking/internal/middleware"
    "github.com/iliyamo/meeting-room-booking/internal/model"
)

// RegisterAnalytics registers the usage-ranking endpoints under
// /v1/analytics, restricted to oversight roles.
func RegisterAnalytics(e *echo.Echo, h *handler.AnalyticsHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
    mws := append([]echo.MiddlewareFunc{
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleAdmin, model.RoleFacilityManager, model.RoleAuditor),
    }, extra...)
    g := e.Group("/v1/analytics", mws...)

    g.GET("/room-popularity", h.RoomPopularity)
    g.GET("/user-activity", h.UserActivity)
}
