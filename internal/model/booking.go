package model

import "time"

// Booking statuses. A booking is created CONFIRMED and can only move to
// CANCELLED. Cancelled rows are kept for history and never participate in
// conflict checks.
const (
    BookingStatusConfirmed = "CONFIRMED"
    BookingStatusCancelled = "CANCELLED"
)

// Booking records a user's claim on a room for a time interval.
// Start and end are half-open: the booking occupies [StartTime, EndTime).
// All timestamps are UTC.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who created the booking; ownership never transfers.
//  RoomID    – room being booked.
//  StartTime – inclusive start of the interval.
//  EndTime   – exclusive end of the interval.
//  Status    – CONFIRMED or CANCELLED.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Booking struct {
    ID        uint64    `json:"id"`         // bookings.id
    UserID    uint64    `json:"user_id"`    // bookings.user_id
    RoomID    uint64    `json:"room_id"`    // bookings.room_id
    StartTime time.Time `json:"start_time"` // bookings.start_time
    EndTime   time.Time `json:"end_time"`   // bookings.end_time
    Status    string    `json:"status"`     // bookings.status
    CreatedAt time.Time `json:"created_at"` // bookings.created_at
    UpdatedAt time.Time `json:"updated_at"` // bookings.updated_at
}

// Interval is a half-open time range [Start, End).
type Interval struct {
    Start time.Time
    End   time.Time
}

// Valid reports whether the interval has positive length.
func (iv Interval) Valid() bool {
    return iv.Start.Before(iv.End)
}

// Overlaps reports whether two half-open intervals share at least one
// instant. The comparisons are strict, so back-to-back intervals (one ends
// exactly when the other starts) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
    return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Interval returns the booking's time range.
func (b Booking) Interval() Interval {
    return Interval{Start: b.StartTime, End: b.EndTime}
}
