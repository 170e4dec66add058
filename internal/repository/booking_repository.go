package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/meeting-room-booking/internal/model"
)

// BookingRepo provides persistence for bookings. All timestamp columns are
// DATETIME in UTC; the driver is opened with parseTime=true so values scan
// directly into time.Time.
//
// Conflict-sensitive reads and writes come in Tx variants so that the
// service layer can serialize the overlap scan and the insert/update in a
// single transaction. The non-Tx variants are plain reads.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, user_id, room_id, start_time, end_time, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }, b *model.Booking) error {
    return row.Scan(&b.ID, &b.UserID, &b.RoomID, &b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and reads the row back to populate DB-assigned fields
// (id, created_at, updated_at). The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings (user_id, room_id, start_time, end_time, status) VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, b.UserID, b.RoomID, b.StartTime.UTC(), b.EndTime.UTC(), b.Status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    return scanBooking(tx.QueryRowContext(ctx, sel, b.ID), b)
}

// GetByID fetches a booking by id. It returns ErrBookingNotFound when no
// row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    var b model.Booking
    if err := scanBooking(r.db.QueryRowContext(ctx, q, id), &b); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    return &b, nil
}

// GetByIDTx is GetByID inside a transaction with a row lock, so that a
// concurrent update or cancel of the same booking blocks until the caller
// commits.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
    var b model.Booking
    if err := scanBooking(tx.QueryRowContext(ctx, q, id), &b); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    return &b, nil
}

// AnyConfirmedOverlap reports whether any CONFIRMED booking for the room
// overlaps the half-open interval [start, end). A booking overlaps when it
// starts before the proposed end and ends after the proposed start, so
// back-to-back bookings do not conflict. excludeID removes one booking
// from the scan (pass 0 to scan all); updates use it so a booking never
// conflicts with itself.
func (r *BookingRepo) AnyConfirmedOverlap(ctx context.Context, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
    return anyConfirmedOverlap(ctx, r.db, roomID, start, end, excludeID, false)
}

// AnyConfirmedOverlapTx is AnyConfirmedOverlap inside a transaction. The
// scan locks the matching rows (FOR UPDATE) so a concurrent writer touching
// the same slot serializes behind the caller. Phantom inserts for the room
// are excluded by the room-row lock taken by RoomRepo.LockTx before this
// scan.
func (r *BookingRepo) AnyConfirmedOverlapTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
    return anyConfirmedOverlap(ctx, tx, roomID, start, end, excludeID, true)
}

type querier interface {
    QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func anyConfirmedOverlap(ctx context.Context, q querier, roomID uint64, start, end time.Time, excludeID uint64, lock bool) (bool, error) {
    query := `SELECT COUNT(*) FROM bookings
              WHERE room_id = ? AND status = 'CONFIRMED'
                AND start_time < ? AND end_time > ?`
    args := []interface{}{roomID, end.UTC(), start.UTC()}
    if excludeID != 0 {
        query += ` AND id <> ?`
        args = append(args, excludeID)
    }
    if lock {
        query += ` FOR UPDATE`
    }
    var n int
    if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
        return false, err
    }
    return n > 0, nil
}

// UpdateTx persists new room/interval values for a booking inside the
// caller's transaction. Status is deliberately not touched here; cancel is
// a separate operation.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `UPDATE bookings
               SET room_id = ?, start_time = ?, end_time = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
    if _, err := tx.ExecContext(ctx, q, b.RoomID, b.StartTime.UTC(), b.EndTime.UTC(), b.ID); err != nil {
        return err
    }
    const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    return scanBooking(tx.QueryRowContext(ctx, sel, b.ID), b)
}

// CancelTx soft-cancels a booking: the status flips to CANCELLED and the
// row stays for history queries. Cancelling an already cancelled booking
// is a no-op at this layer.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    const q = `UPDATE bookings
               SET status = 'CANCELLED', updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND status <> 'CANCELLED'`
    _, err := tx.ExecContext(ctx, q, id)
    return err
}

// ListByUser returns all bookings created by the given user, newest first.
// Cancelled bookings are included so users can see their history.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY start_time DESC`
    return r.list(ctx, q, userID)
}

// ListByRoom returns all bookings for the given room, newest first.
func (r *BookingRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = ? ORDER BY start_time DESC`
    return r.list(ctx, q, roomID)
}

// ListAll returns every booking ordered by start time descending. Intended
// for administrative and audit listings.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings ORDER BY start_time DESC`
    return r.list(ctx, q)
}

func (r *BookingRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Booking, error) {
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        var b model.Booking
        if err := scanBooking(rows, &b); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
