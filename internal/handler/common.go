package handler // handler defines http handlers

import (
    "context"
    "errors"
    "strconv"
    "time"

    "github.com/iliyamo/meeting-room-booking/internal/model"
    "github.com/labstack/echo/v4"
)

// requestContext bounds every persistence call made on behalf of a
// request. A store that does not answer within the deadline surfaces as
// 503 rather than hanging the connection.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// getUserID extracts the user_id set by the JWT middleware and converts it
// to uint64. JWT numeric claims decode as float64, so several encodings
// are tolerated.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware, or an empty
// string when absent.
func getRole(c echo.Context) string {
    if s, ok := c.Get("role").(string); ok {
        return s
    }
    return ""
}

// isPrivileged reports whether the role may act on bookings it does not
// own (update/cancel on behalf of others).
func isPrivileged(role string) bool {
    return role == model.RoleAdmin || role == model.RoleFacilityManager
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}
