package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/meeting-room-booking/internal/model"
)

// ReviewRepo manages persistence for room reviews.
type ReviewRepo struct {
    db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo with the given DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewColumns = `id, user_id, room_id, rating, comment, is_flagged, created_at, updated_at`

func scanReview(row interface{ Scan(...interface{}) error }, rv *model.Review) error {
    var updatedAt sql.NullTime
    if err := row.Scan(&rv.ID, &rv.UserID, &rv.RoomID, &rv.Rating, &rv.Comment, &rv.IsFlagged, &rv.CreatedAt, &updatedAt); err != nil {
        return err
    }
    if updatedAt.Valid {
        t := updatedAt.Time
        rv.UpdatedAt = &t
    }
    return nil
}

// Create inserts a review and reads the row back for DB-assigned fields.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
    const q = `INSERT INTO reviews (user_id, room_id, rating, comment) VALUES (?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, rv.UserID, rv.RoomID, rv.Rating, rv.Comment)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rv.ID = uint64(id)
    const sel = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`
    return scanReview(r.db.QueryRowContext(ctx, sel, rv.ID), rv)
}

// GetByID returns a review by id or ErrReviewNotFound.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
    const q = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`
    var rv model.Review
    if err := scanReview(r.db.QueryRowContext(ctx, q, id), &rv); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReviewNotFound
        }
        return nil, err
    }
    return &rv, nil
}

// ListByRoom returns reviews for a room, newest first. Flagged reviews are
// excluded unless includeFlagged is set (moderator listings).
func (r *ReviewRepo) ListByRoom(ctx context.Context, roomID uint64, includeFlagged bool) ([]model.Review, error) {
    query := `SELECT ` + reviewColumns + ` FROM reviews WHERE room_id = ?`
    if !includeFlagged {
        query += ` AND is_flagged = FALSE`
    }
    query += ` ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, query, roomID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Review, 0)
    for rows.Next() {
        var rv model.Review
        if err := scanReview(rows, &rv); err != nil {
            return nil, err
        }
        out = append(out, rv)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Update overwrites rating and comment for a review.
func (r *ReviewRepo) Update(ctx context.Context, rv *model.Review) error {
    const q = `UPDATE reviews SET rating = ?, comment = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    if _, err := r.db.ExecContext(ctx, q, rv.Rating, rv.Comment, rv.ID); err != nil {
        return err
    }
    const sel = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`
    return scanReview(r.db.QueryRowContext(ctx, sel, rv.ID), rv)
}

// SetFlagged flips the moderation flag on a review.
func (r *ReviewRepo) SetFlagged(ctx context.Context, id uint64, flagged bool) error {
    const q = `UPDATE reviews SET is_flagged = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, flagged, id)
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

// Delete removes a review.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
    const q = `DELETE FROM reviews WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrReviewNotFound
    }
    return nil
}
