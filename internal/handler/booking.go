package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/meeting-room-booking/internal/repository"
    "github.com/iliyamo/meeting-room-booking/internal/service"
)

// BookingHandler exposes the booking admission service over HTTP. All
// methods assume JWT authentication has already run; role checks beyond
// the route-level middleware (owner-or-privileged on update/cancel) are
// performed here because they need the booking row.
type BookingHandler struct {
    Svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
    if svc == nil {
        panic("nil service passed to NewBookingHandler")
    }
    return &BookingHandler{Svc: svc}
}

type createBookingReq struct {
    RoomID    uint64    `json:"room_id"`
    StartTime time.Time `json:"start_time"`
    EndTime   time.Time `json:"end_time"`
}

type updateBookingReq struct {
    RoomID    *uint64    `json:"room_id"`
    StartTime *time.Time `json:"start_time"`
    EndTime   *time.Time `json:"end_time"`
}

// bookingError translates service failures into HTTP responses. The
// mapping is part of the API contract: conflicts and invalid states are
// 409, validation is 400, unknown ids and inactive rooms are 404, and a
// store that does not answer in time is 503.
func bookingError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrInvalidRange):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end time must be after start time"})
    case errors.Is(err, service.ErrRoomUnavailable):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found or inactive"})
    case errors.Is(err, service.ErrSlotConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "room already booked for that slot"})
    case errors.Is(err, service.ErrInvalidState):
        return c.JSON(http.StatusConflict, echo.Map{"error": "booking is cancelled"})
    case errors.Is(err, service.ErrUnavailable):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage unavailable"})
    case errors.Is(err, repository.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}

// Create handles POST /v1/bookings. The requester becomes the booking's
// owner; the slot must be free of confirmed bookings on an active room.
func (h *BookingHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.RoomID == 0 || req.StartTime.IsZero() || req.EndTime.IsZero() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id, start_time and end_time are required"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    b, err := h.Svc.Create(ctx, req.RoomID, req.StartTime, req.EndTime, userID)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusCreated, b)
}

// Update handles PUT /v1/bookings/:id. Only the owner or a privileged
// role (admin, facility_manager) may update; unspecified fields keep their
// current values.
func (h *BookingHandler) Update(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookingID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req updateBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    existing, err := h.Svc.Get(ctx, bookingID)
    if err != nil {
        return bookingError(c, err)
    }
    if existing.UserID != userID && !isPrivileged(getRole(c)) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    patch := service.BookingPatch{
        RoomID:    req.RoomID,
        StartTime: req.StartTime,
        EndTime:   req.EndTime,
    }
    b, err := h.Svc.Update(ctx, bookingID, userID, patch)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, b)
}

// Cancel handles DELETE /v1/bookings/:id. The booking is soft-cancelled;
// cancelling twice is a no-op success. Only the owner or a privileged role
// may cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookingID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    existing, err := h.Svc.Get(ctx, bookingID)
    if err != nil {
        return bookingError(c, err)
    }
    if existing.UserID != userID && !isPrivileged(getRole(c)) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    if err := h.Svc.Cancel(ctx, bookingID, userID); err != nil {
        return bookingError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Availability handles GET /v1/bookings/availability. Query parameters:
// room_id, start_time, end_time (RFC3339). Returns whether the slot is
// free of confirmed bookings.
func (h *BookingHandler) Availability(c echo.Context) error {
    roomID, err := strconv.ParseUint(c.QueryParam("room_id"), 10, 64)
    if err != nil || roomID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
    }
    start, err := time.Parse(time.RFC3339, c.QueryParam("start_time"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
    }
    end, err := time.Parse(time.RFC3339, c.QueryParam("end_time"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    available, err := h.Svc.CheckAvailability(ctx, roomID, start, end)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"room_id": roomID, "available": available})
}

// ListMine handles GET /v1/my-bookings: all bookings created by the
// requester, cancelled ones included.
func (h *BookingHandler) ListMine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    items, err := h.Svc.ListForUser(ctx, userID)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListAll handles GET /v1/bookings. Route middleware restricts this to
// admin, auditor and facility_manager. An optional room_id query filters
// to one room.
func (h *BookingHandler) ListAll(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()

    if raw := c.QueryParam("room_id"); raw != "" {
        roomID, err := strconv.ParseUint(raw, 10, 64)
        if err != nil || roomID == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
        }
        items, err := h.Svc.ListForRoom(ctx, roomID)
        if err != nil {
            return bookingError(c, err)
        }
        return c.JSON(http.StatusOK, echo.Map{"items": items})
    }

    items, err := h.Svc.ListAll(ctx)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListForUser handles GET /v1/bookings/user/:id. Route middleware
// restricts this to admin and auditor; it returns another user's full
// booking history.
func (h *BookingHandler) ListForUser(c echo.Context) error {
    targetID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    items, err := h.Svc.ListForUser(ctx, targetID)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
