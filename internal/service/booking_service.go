// Package service holds the booking admission logic: everything between
// the HTTP handlers and the repositories that decides whether a booking
// may hold its slot.
package service

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "time"

    "github.com/iliyamo/meeting-room-booking/internal/model"
    "github.com/iliyamo/meeting-room-booking/internal/queue"
    "github.com/iliyamo/meeting-room-booking/internal/repository"
)

// Failure kinds surfaced to callers. Handlers translate these into HTTP
// statuses; nothing here is retried internally except a failed transaction
// begin (once), after which ErrUnavailable is returned.
var (
    // ErrInvalidRange is returned when a requested interval has
    // start >= end.
    ErrInvalidRange = errors.New("start time must be before end time")
    // ErrRoomUnavailable is returned when the target room does not exist
    // or is out of service.
    ErrRoomUnavailable = errors.New("room not found or inactive")
    // ErrSlotConflict is returned when a confirmed booking already
    // overlaps the requested interval.
    ErrSlotConflict = errors.New("room already booked for that slot")
    // ErrInvalidState is returned when an operation is not valid for the
    // booking's current status, e.g. updating a cancelled booking.
    ErrInvalidState = errors.New("booking is not in a state that allows this operation")
    // ErrUnavailable is returned when the store cannot be reached or does
    // not answer within the request deadline.
    ErrUnavailable = errors.New("storage unavailable")
)

// BookingEventPublisher delivers booking_created events. Delivery is
// best-effort; the admission flow never fails because of it.
type BookingEventPublisher interface {
    PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
}

// RoomCacheInvalidator drops cached state for a room after its booking set
// changes. Implementations must tolerate being called for rooms that were
// never cached.
type RoomCacheInvalidator interface {
    InvalidateRoom(ctx context.Context, roomID uint64) error
}

// BookingPatch carries the fields an update may change. Nil fields keep
// the booking's current value.
type BookingPatch struct {
    RoomID    *uint64
    StartTime *time.Time
    EndTime   *time.Time
}

// BookingService admits, updates and cancels bookings while maintaining
// the one-confirmed-booking-per-room-per-interval invariant. Every
// mutating operation runs the conflict scan and the write in a single
// transaction, with the room's row locked first so concurrent writers for
// the same room serialize instead of racing the check.
type BookingService struct {
    bookings    *repository.BookingRepo
    rooms       *repository.RoomRepo
    publisher   BookingEventPublisher // may be nil
    invalidator RoomCacheInvalidator  // may be nil
    eventWait   time.Duration
}

// NewBookingService wires the service. publisher and invalidator may be
// nil when eventing or caching is disabled.
func NewBookingService(bookings *repository.BookingRepo, rooms *repository.RoomRepo, publisher BookingEventPublisher, invalidator RoomCacheInvalidator) *BookingService {
    if bookings == nil || rooms == nil {
        panic("nil repository passed to NewBookingService")
    }
    return &BookingService{
        bookings:    bookings,
        rooms:       rooms,
        publisher:   publisher,
        invalidator: invalidator,
        eventWait:   3 * time.Second,
    }
}

// Create admits a new booking for the requester. On success the booking is
// persisted as CONFIRMED and a booking_created event is dispatched
// fire-and-forget.
func (s *BookingService) Create(ctx context.Context, roomID uint64, start, end time.Time, userID uint64) (*model.Booking, error) {
    iv := model.Interval{Start: start, End: end}
    if !iv.Valid() {
        return nil, ErrInvalidRange
    }

    tx, err := s.begin(ctx)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Lock the room row first. This is the serialization point for all
    // booking writes touching the room: a second writer blocks here until
    // our insert is committed and then sees it in its own overlap scan.
    active, err := s.rooms.LockTx(ctx, tx, roomID)
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return nil, ErrRoomUnavailable
        }
        return nil, s.storeErr(err)
    }
    if !active {
        return nil, ErrRoomUnavailable
    }

    conflict, err := s.bookings.AnyConfirmedOverlapTx(ctx, tx, roomID, start, end, 0)
    if err != nil {
        return nil, s.storeErr(err)
    }
    if conflict {
        return nil, ErrSlotConflict
    }

    b := &model.Booking{
        UserID:    userID,
        RoomID:    roomID,
        StartTime: start.UTC(),
        EndTime:   end.UTC(),
        Status:    model.BookingStatusConfirmed,
    }
    if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
        return nil, s.storeErr(err)
    }
    if err := tx.Commit(); err != nil {
        return nil, s.storeErr(err)
    }
    committed = true

    s.afterWrite(b.RoomID, func(ctx context.Context) {
        if s.publisher == nil {
            return
        }
        ev := queue.BookingCreatedEvent{
            Event:     "booking_created",
            BookingID: b.ID,
            UserID:    b.UserID,
            RoomID:    b.RoomID,
            StartTime: b.StartTime.UTC().Format(time.RFC3339),
            EndTime:   b.EndTime.UTC().Format(time.RFC3339),
        }
        if err := s.publisher.PublishBookingCreated(ctx, ev); err != nil {
            log.Printf("booking %d: publish booking_created failed: %v", b.ID, err)
        }
    })
    return b, nil
}

// Update merges the patch over the booking's current values, re-validates
// the interval and re-checks conflicts with every other confirmed booking
// on the (possibly new) room. Only CONFIRMED bookings may be updated;
// cancelled ones are rejected so they cannot be resurrected as active
// conflicts. Authorization is the caller's job; requesterID is recorded in
// logs only.
func (s *BookingService) Update(ctx context.Context, bookingID, requesterID uint64, patch BookingPatch) (*model.Booking, error) {
    tx, err := s.begin(ctx)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := s.bookings.GetByIDTx(ctx, tx, bookingID)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return nil, err
        }
        return nil, s.storeErr(err)
    }
    if b.Status != model.BookingStatusConfirmed {
        return nil, ErrInvalidState
    }

    oldRoom := b.RoomID
    if patch.RoomID != nil {
        b.RoomID = *patch.RoomID
    }
    if patch.StartTime != nil {
        b.StartTime = patch.StartTime.UTC()
    }
    if patch.EndTime != nil {
        b.EndTime = patch.EndTime.UTC()
    }
    if !b.Interval().Valid() {
        return nil, ErrInvalidRange
    }

    // Lock the involved room rows in ascending id order so two updates
    // moving bookings between the same pair of rooms cannot deadlock.
    for _, roomID := range lockOrder(oldRoom, b.RoomID) {
        active, err := s.rooms.LockTx(ctx, tx, roomID)
        if err != nil {
            if errors.Is(err, repository.ErrRoomNotFound) {
                return nil, ErrRoomUnavailable
            }
            return nil, s.storeErr(err)
        }
        if roomID == b.RoomID && !active {
            return nil, ErrRoomUnavailable
        }
    }

    conflict, err := s.bookings.AnyConfirmedOverlapTx(ctx, tx, b.RoomID, b.StartTime, b.EndTime, b.ID)
    if err != nil {
        return nil, s.storeErr(err)
    }
    if conflict {
        return nil, ErrSlotConflict
    }

    if err := s.bookings.UpdateTx(ctx, tx, b); err != nil {
        return nil, s.storeErr(err)
    }
    if err := tx.Commit(); err != nil {
        return nil, s.storeErr(err)
    }
    committed = true
    log.Printf("booking %d updated by user %d", b.ID, requesterID)

    s.afterWrite(oldRoom, nil)
    if b.RoomID != oldRoom {
        s.afterWrite(b.RoomID, nil)
    }
    return b, nil
}

// Cancel soft-cancels a booking: the status flips to CANCELLED and the row
// is kept for history. Cancelling an already cancelled booking succeeds
// without touching the row. Authorization is the caller's job.
func (s *BookingService) Cancel(ctx context.Context, bookingID, requesterID uint64) error {
    tx, err := s.begin(ctx)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := s.bookings.GetByIDTx(ctx, tx, bookingID)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return err
        }
        return s.storeErr(err)
    }
    if b.Status == model.BookingStatusCancelled {
        // Idempotent: already cancelled is a no-op success.
        if err := tx.Commit(); err != nil {
            return s.storeErr(err)
        }
        committed = true
        return nil
    }
    if err := s.bookings.CancelTx(ctx, tx, b.ID); err != nil {
        return s.storeErr(err)
    }
    if err := tx.Commit(); err != nil {
        return s.storeErr(err)
    }
    committed = true
    log.Printf("booking %d cancelled by user %d", b.ID, requesterID)

    s.afterWrite(b.RoomID, nil)
    return nil
}

// CheckAvailability reports whether the half-open interval [start, end) is
// free of confirmed bookings for the room. It applies the same predicate
// Create uses, so a caller checking immediately before creating sees a
// consistent answer barring concurrent writers.
func (s *BookingService) CheckAvailability(ctx context.Context, roomID uint64, start, end time.Time) (bool, error) {
    iv := model.Interval{Start: start, End: end}
    if !iv.Valid() {
        return false, ErrInvalidRange
    }
    room, err := s.rooms.GetByID(ctx, roomID)
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return false, ErrRoomUnavailable
        }
        return false, s.storeErr(err)
    }
    if !room.IsActive {
        return false, ErrRoomUnavailable
    }
    conflict, err := s.bookings.AnyConfirmedOverlap(ctx, roomID, start, end, 0)
    if err != nil {
        return false, s.storeErr(err)
    }
    return !conflict, nil
}

// Get returns a booking by id so callers can inspect ownership before
// mutating operations. ErrBookingNotFound passes through untouched.
func (s *BookingService) Get(ctx context.Context, bookingID uint64) (*model.Booking, error) {
    b, err := s.bookings.GetByID(ctx, bookingID)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return nil, err
        }
        return nil, s.storeErr(err)
    }
    return b, nil
}

// ListForUser returns the bookings created by the given user.
func (s *BookingService) ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    out, err := s.bookings.ListByUser(ctx, userID)
    if err != nil {
        return nil, s.storeErr(err)
    }
    return out, nil
}

// ListForRoom returns all bookings of a room (admin view).
func (s *BookingService) ListForRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
    out, err := s.bookings.ListByRoom(ctx, roomID)
    if err != nil {
        return nil, s.storeErr(err)
    }
    return out, nil
}

// ListAll returns every booking (admin/audit view).
func (s *BookingService) ListAll(ctx context.Context) ([]model.Booking, error) {
    out, err := s.bookings.ListAll(ctx)
    if err != nil {
        return nil, s.storeErr(err)
    }
    return out, nil
}

// begin starts a transaction, retrying once on a transient failure before
// giving up with ErrUnavailable.
func (s *BookingService) begin(ctx context.Context) (*sql.Tx, error) {
    tx, err := s.bookings.DB().BeginTx(ctx, nil)
    if err == nil {
        return tx, nil
    }
    if ctx.Err() != nil {
        return nil, ErrUnavailable
    }
    time.Sleep(100 * time.Millisecond)
    tx, err = s.bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return nil, ErrUnavailable
    }
    return tx, nil
}

// storeErr maps persistence timeouts and cancellations onto
// ErrUnavailable; anything else passes through for the handler to treat as
// an internal error.
func (s *BookingService) storeErr(err error) error {
    if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
        return ErrUnavailable
    }
    return err
}

// afterWrite runs cache invalidation plus an optional extra side effect in
// the background with a bounded deadline. Failures are logged and
// swallowed; nothing here may affect the committed write.
func (s *BookingService) afterWrite(roomID uint64, extra func(context.Context)) {
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), s.eventWait)
        defer cancel()
        if s.invalidator != nil {
            if err := s.invalidator.InvalidateRoom(ctx, roomID); err != nil {
                log.Printf("room %d: cache invalidation failed: %v", roomID, err)
            }
        }
        if extra != nil {
            extra(ctx)
        }
    }()
}

func lockOrder(a, b uint64) []uint64 {
    if a == b {
        return []uint64{a}
    }
    if a < b {
        return []uint64{a, b}
    }
    return []uint64{b, a}
}
