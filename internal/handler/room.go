package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/meeting-room-booking/internal/model"
    "github.com/iliyamo/meeting-room-booking/internal/repository"
)

// RoomHandler exposes room catalogue CRUD. Reads are open to any
// authenticated user; mutations are restricted by route middleware to
// admin and facility_manager.
type RoomHandler struct {
    Rooms *repository.RoomRepo
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
    if rooms == nil {
        panic("nil repository passed to NewRoomHandler")
    }
    return &RoomHandler{Rooms: rooms}
}

type roomReq struct {
    Name      string   `json:"name"`
    Capacity  uint32   `json:"capacity"`
    Equipment []string `json:"equipment"`
    Location  string   `json:"location"`
    IsActive  *bool    `json:"is_active"`
}

// List handles GET /v1/rooms. With ?active=true only in-service rooms are
// returned.
func (h *RoomHandler) List(c echo.Context) error {
    onlyActive := strings.EqualFold(c.QueryParam("active"), "true")
    ctx, cancel := requestContext(c)
    defer cancel()

    rooms, err := h.Rooms.List(ctx, onlyActive)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    room, err := h.Rooms.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, room)
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
    var req roomReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" || req.Capacity == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and capacity are required"})
    }
    active := true
    if req.IsActive != nil {
        active = *req.IsActive
    }
    room := &model.Room{
        Name:      req.Name,
        Capacity:  req.Capacity,
        Equipment: req.Equipment,
        Location:  req.Location,
        IsActive:  active,
    }
    if room.Equipment == nil {
        room.Equipment = []string{}
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Rooms.Create(ctx, room); err != nil {
        if errors.Is(err, repository.ErrRoomNameExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, room)
}

// Update handles PUT /v1/rooms/:id. The full attribute set is replaced;
// flipping is_active to false makes the room refuse new bookings without
// touching existing ones.
func (h *RoomHandler) Update(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    var req roomReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" || req.Capacity == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and capacity are required"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    current, err := h.Rooms.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    current.Name = req.Name
    current.Capacity = req.Capacity
    current.Location = req.Location
    if req.Equipment != nil {
        current.Equipment = req.Equipment
    }
    if req.IsActive != nil {
        current.IsActive = *req.IsActive
    }

    if err := h.Rooms.Update(ctx, current); err != nil {
        switch {
        case errors.Is(err, repository.ErrRoomNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        case errors.Is(err, repository.ErrRoomNameExists):
            return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
    }
    return c.JSON(http.StatusOK, current)
}

// Delete handles DELETE /v1/rooms/:id. Rooms are deactivated, not
// removed, so booking and review history keeps a valid reference.
func (h *RoomHandler) Delete(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Rooms.Deactivate(ctx, id); err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.NoContent(http.StatusNoContent)
}
