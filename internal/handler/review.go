package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/meeting-room-booking/internal/model"
    "github.com/iliyamo/meeting-room-booking/internal/repository"
)

// ReviewHandler exposes room reviews. Any authenticated user can post and
// read reviews; editing someone else's review or flagging takes the
// moderator role.
type ReviewHandler struct {
    Reviews *repository.ReviewRepo
    Rooms   *repository.RoomRepo
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(reviews *repository.ReviewRepo, rooms *repository.RoomRepo) *ReviewHandler {
    if reviews == nil || rooms == nil {
        panic("nil repository passed to NewReviewHandler")
    }
    return &ReviewHandler{Reviews: reviews, Rooms: rooms}
}

type reviewReq struct {
    Rating  uint8  `json:"rating"`
    Comment string `json:"comment"`
}

func canModerate(role string) bool {
    return role == model.RoleModerator || role == model.RoleAdmin
}

// Create handles POST /v1/rooms/:id/reviews.
func (h *ReviewHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    roomID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    var req reviewReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Rating < 1 || req.Rating > 5 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    if _, err := h.Rooms.GetByID(ctx, roomID); err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    rv := &model.Review{
        UserID:  userID,
        RoomID:  roomID,
        Rating:  req.Rating,
        Comment: strings.TrimSpace(req.Comment),
    }
    if err := h.Reviews.Create(ctx, rv); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, rv)
}

// ListByRoom handles GET /v1/rooms/:id/reviews. Flagged reviews are hidden
// from everyone but moderators.
func (h *ReviewHandler) ListByRoom(c echo.Context) error {
    roomID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    items, err := h.Reviews.ListByRoom(ctx, roomID, canModerate(getRole(c)))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PUT /v1/reviews/:id. Only the author or a moderator may
// edit.
func (h *ReviewHandler) Update(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    reviewID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
    }
    var req reviewReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Rating < 1 || req.Rating > 5 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    rv, err := h.Reviews.GetByID(ctx, reviewID)
    if err != nil {
        if errors.Is(err, repository.ErrReviewNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if rv.UserID != userID && !canModerate(getRole(c)) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    rv.Rating = req.Rating
    rv.Comment = strings.TrimSpace(req.Comment)
    if err := h.Reviews.Update(ctx, rv); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, rv)
}

// Delete handles DELETE /v1/reviews/:id. Only the author or a moderator
// may remove a review.
func (h *ReviewHandler) Delete(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    reviewID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    rv, err := h.Reviews.GetByID(ctx, reviewID)
    if err != nil {
        if errors.Is(err, repository.ErrReviewNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if rv.UserID != userID && !canModerate(getRole(c)) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    if err := h.Reviews.Delete(ctx, reviewID); err != nil {
        if errors.Is(err, repository.ErrReviewNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.NoContent(http.StatusNoContent)
}

type flagReq struct {
    Flagged bool `json:"flagged"`
}

// Flag handles POST /v1/reviews/:id/flag. Moderator-only (enforced by
// route middleware); hides or restores a review.
func (h *ReviewHandler) Flag(c echo.Context) error {
    reviewID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
    }
    req := flagReq{Flagged: true}
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Reviews.SetFlagged(ctx, reviewID, req.Flagged); err != nil {
        if errors.Is(err, repository.ErrReviewNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"review_id": reviewID, "flagged": req.Flagged})
}
