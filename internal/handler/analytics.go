package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/meeting-room-booking/internal/repository"
)

const (
    defaultAnalyticsLimit = 10
    maxAnalyticsLimit     = 100
)

// AnalyticsHandler serves the usage-ranking endpoints. Route middleware
// restricts them to admin, facility_manager and auditor.
type AnalyticsHandler struct {
    Analytics *repository.AnalyticsRepo
}

// NewAnalyticsHandler constructs an AnalyticsHandler.
func NewAnalyticsHandler(analytics *repository.AnalyticsRepo) *AnalyticsHandler {
    if analytics == nil {
        panic("nil repository passed to NewAnalyticsHandler")
    }
    return &AnalyticsHandler{Analytics: analytics}
}

// limitParam parses ?limit= and clamps it into [1, maxAnalyticsLimit].
func limitParam(c echo.Context) int {
    raw := c.QueryParam("limit")
    if raw == "" {
        return defaultAnalyticsLimit
    }
    n, err := strconv.Atoi(raw)
    if err != nil || n < 1 {
        return defaultAnalyticsLimit
    }
    if n > maxAnalyticsLimit {
        return maxAnalyticsLimit
    }
    return n
}

// RoomPopularity handles GET /v1/analytics/room-popularity.
func (h *AnalyticsHandler) RoomPopularity(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()

    items, err := h.Analytics.TopRooms(ctx, limitParam(c))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UserActivity handles GET /v1/analytics/user-activity.
func (h *AnalyticsHandler) UserActivity(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()

    items, err := h.Analytics.TopUsers(ctx, limitParam(c))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
