package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/meeting-room-booking/internal/handler"
    "github.com/iliyamo/meeting-room-booking/internal/middleware"
    "github.com/iliyamo/meeting-room-booking/internal/model"
)

// RegisterReviews registers review endpoints under /v1. Posting and
// reading are open to any authenticated user; editing another user's
// review is decided in the handler, and flagging is moderator-only.
func RegisterReviews(e *echo.Echo, h *handler.ReviewHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
    mws := append([]echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}, extra...)
    g := e.Group("/v1", mws...)

    g.POST("/rooms/:id/reviews", h.Create)
    g.GET("/rooms/:id/reviews", h.ListByRoom)
    g.PUT("/reviews/:id", h.Update)
    g.DELETE("/reviews/:id", h.Delete)

    g.POST("/reviews/:id/flag", h.Flag,
        middleware.RequireRole(model.RoleAdmin, model.RoleModerator))
}
