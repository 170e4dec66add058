package model

import "time"

// Review is a user's rating of a room. Flagged reviews stay in the table
// but are hidden from public listings until a moderator clears them.
type Review struct {
    ID        uint64     `json:"id"`         // reviews.id
    UserID    uint64     `json:"user_id"`    // reviews.user_id
    RoomID    uint64     `json:"room_id"`    // reviews.room_id
    Rating    uint8      `json:"rating"`     // reviews.rating (1..5)
    Comment   string     `json:"comment"`    // reviews.comment
    IsFlagged bool       `json:"is_flagged"` // reviews.is_flagged
    CreatedAt time.Time  `json:"created_at"` // reviews.created_at
    UpdatedAt *time.Time `json:"updated_at"` // reviews.updated_at (nullable)
}
