package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "strings"

    "github.com/iliyamo/meeting-room-booking/internal/model"
)

// RoomRepo manages persistence for meeting rooms. The equipment list is
// stored as a JSON column and (un)marshalled here so callers only see
// []string.
type RoomRepo struct {
    db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, name, capacity, equipment, location, is_active, created_at, updated_at`

func scanRoom(row interface{ Scan(...interface{}) error }, rm *model.Room) error {
    var equipment []byte
    if err := row.Scan(&rm.ID, &rm.Name, &rm.Capacity, &equipment, &rm.Location, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
        return err
    }
    rm.Equipment = []string{}
    if len(equipment) > 0 {
        if err := json.Unmarshal(equipment, &rm.Equipment); err != nil {
            return err
        }
    }
    return nil
}

// Create inserts a new room and assigns the generated ID back to the
// struct. A duplicate name yields ErrRoomNameExists.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
    equipment, err := json.Marshal(rm.Equipment)
    if err != nil {
        return err
    }
    const q = `INSERT INTO rooms (name, capacity, equipment, location, is_active) VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, rm.Name, rm.Capacity, equipment, rm.Location, rm.IsActive)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrRoomNameExists
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rm.ID = uint64(id)
    const sel = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
    return scanRoom(r.db.QueryRowContext(ctx, sel, rm.ID), rm)
}

// GetByID retrieves a room by its ID. It returns ErrRoomNotFound if there
// is no matching row.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
    var rm model.Room
    if err := scanRoom(r.db.QueryRowContext(ctx, q, id), &rm); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrRoomNotFound
        }
        return nil, err
    }
    return &rm, nil
}

// LockTx locks the room's row for the duration of the caller's transaction
// and returns its is_active flag. Taking this lock before the overlap scan
// serializes concurrent booking writes for the same room, which is what
// keeps two racing creates from both passing the conflict check.
func (r *RoomRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
    const q = `SELECT is_active FROM rooms WHERE id = ? FOR UPDATE`
    var active bool
    if err := tx.QueryRowContext(ctx, q, id).Scan(&active); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return false, ErrRoomNotFound
        }
        return false, err
    }
    return active, nil
}

// List returns rooms ordered by name. When onlyActive is true, inactive
// rooms are filtered out.
func (r *RoomRepo) List(ctx context.Context, onlyActive bool) ([]model.Room, error) {
    query := `SELECT ` + roomColumns + ` FROM rooms`
    if onlyActive {
        query += ` WHERE is_active = TRUE`
    }
    query += ` ORDER BY name`
    rows, err := r.db.QueryContext(ctx, query)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Room, 0)
    for rows.Next() {
        var rm model.Room
        if err := scanRoom(rows, &rm); err != nil {
            return nil, err
        }
        out = append(out, rm)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Update overwrites the room's mutable attributes. It returns
// ErrRoomNotFound when the id does not exist and ErrRoomNameExists when
// the new name collides with another room.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
    equipment, err := json.Marshal(rm.Equipment)
    if err != nil {
        return err
    }
    const q = `UPDATE rooms
               SET name = ?, capacity = ?, equipment = ?, location = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, rm.Name, rm.Capacity, equipment, rm.Location, rm.IsActive, rm.ID)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrRoomNameExists
        }
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Either the row is missing or nothing changed; distinguish them.
        if _, err := r.GetByID(ctx, rm.ID); err != nil {
            return err
        }
    }
    const sel = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
    return scanRoom(r.db.QueryRowContext(ctx, sel, rm.ID), rm)
}

// Deactivate marks a room as out of service. The row is retained so that
// existing bookings and reviews keep a valid reference; the booking
// service refuses new bookings for inactive rooms.
func (r *RoomRepo) Deactivate(ctx context.Context, id uint64) error {
    const q = `UPDATE rooms SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        if _, err := r.GetByID(ctx, id); err != nil {
            return err
        }
    }
    return nil
}
