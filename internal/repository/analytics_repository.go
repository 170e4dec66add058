package repository

import (
    "context"
    "database/sql"
)

// AnalyticsRepo runs the aggregate queries behind the analytics endpoints.
// These are read-only joins over rooms, users and bookings; they never see
// uncommitted booking state.
type AnalyticsRepo struct {
    db *sql.DB
}

// NewAnalyticsRepo constructs an AnalyticsRepo with the given DB handle.
func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

// RoomPopularity is one row of the rooms-by-booking-count ranking.
type RoomPopularity struct {
    RoomID       uint64 `json:"room_id"`
    RoomName     string `json:"room_name"`
    BookingCount uint64 `json:"booking_count"`
}

// UserActivity is one row of the users-by-booking-count ranking.
type UserActivity struct {
    UserID       uint64 `json:"user_id"`
    Username     string `json:"username"`
    BookingCount uint64 `json:"booking_count"`
}

// TopRooms returns up to limit rooms ordered by how many bookings they
// have. Rooms without bookings are included with a zero count.
func (r *AnalyticsRepo) TopRooms(ctx context.Context, limit int) ([]RoomPopularity, error) {
    const q = `SELECT rm.id, rm.name, COUNT(b.id)
               FROM rooms rm
               LEFT JOIN bookings b ON b.room_id = rm.id
               GROUP BY rm.id, rm.name
               ORDER BY COUNT(b.id) DESC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]RoomPopularity, 0, limit)
    for rows.Next() {
        var p RoomPopularity
        if err := rows.Scan(&p.RoomID, &p.RoomName, &p.BookingCount); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// TopUsers returns up to limit users ordered by how many bookings they
// created.
func (r *AnalyticsRepo) TopUsers(ctx context.Context, limit int) ([]UserActivity, error) {
    const q = `SELECT u.id, u.username, COUNT(b.id)
               FROM users u
               LEFT JOIN bookings b ON b.user_id = u.id
               GROUP BY u.id, u.username
               ORDER BY COUNT(b.id) DESC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]UserActivity, 0, limit)
    for rows.Next() {
        var a UserActivity
        if err := rows.Scan(&a.UserID, &a.Username, &a.BookingCount); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
