package service

import (
    "context"
    "database/sql"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/meeting-room-booking/internal/model"
    "github.com/iliyamo/meeting-room-booking/internal/queue"
    "github.com/iliyamo/meeting-room-booking/internal/repository"
)

// capturingPublisher records booking_created events on a channel so tests
// can wait for the fire-and-forget dispatch.
type capturingPublisher struct {
    events chan queue.BookingCreatedEvent
}

func (p *capturingPublisher) PublishBookingCreated(_ context.Context, ev queue.BookingCreatedEvent) error {
    p.events <- ev
    return nil
}

// capturingInvalidator records invalidated room ids.
type capturingInvalidator struct {
    rooms chan uint64
}

func (i *capturingInvalidator) InvalidateRoom(_ context.Context, roomID uint64) error {
    i.rooms <- roomID
    return nil
}

func newTestService(t *testing.T) (*BookingService, sqlmock.Sqlmock, *capturingPublisher, *capturingInvalidator) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })

    pub := &capturingPublisher{events: make(chan queue.BookingCreatedEvent, 4)}
    inv := &capturingInvalidator{rooms: make(chan uint64, 4)}
    svc := NewBookingService(repository.NewBookingRepo(db), repository.NewRoomRepo(db), pub, inv)
    return svc, mock, pub, inv
}

func waitEvent(t *testing.T, ch chan queue.BookingCreatedEvent) queue.BookingCreatedEvent {
    t.Helper()
    select {
    case ev := <-ch:
        return ev
    case <-time.After(2 * time.Second):
        t.Fatal("timed out waiting for booking_created event")
        return queue.BookingCreatedEvent{}
    }
}

func waitRoom(t *testing.T, ch chan uint64) uint64 {
    t.Helper()
    select {
    case id := <-ch:
        return id
    case <-time.After(2 * time.Second):
        t.Fatal("timed out waiting for cache invalidation")
        return 0
    }
}

func bookingRow(id, userID, roomID uint64, start, end time.Time, status string) *sqlmock.Rows {
    now := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
    return sqlmock.NewRows([]string{"id", "user_id", "room_id", "start_time", "end_time", "status", "created_at", "updated_at"}).
        AddRow(id, userID, roomID, start, end, status, now, now)
}

func activeRow(active bool) *sqlmock.Rows {
    return sqlmock.NewRows([]string{"is_active"}).AddRow(active)
}

func overlapCount(n int) *sqlmock.Rows {
    return sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(n)
}

var (
    slotStart = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
    slotEnd   = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
)

func TestCreateBooking(t *testing.T) {
    svc, mock, pub, inv := newTestService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT is_active FROM rooms`).WithArgs(uint64(3)).WillReturnRows(activeRow(true))
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
        WithArgs(uint64(3), slotEnd, slotStart).
        WillReturnRows(overlapCount(0))
    mock.ExpectExec(`INSERT INTO bookings`).
        WithArgs(uint64(5), uint64(3), slotStart, slotEnd, model.BookingStatusConfirmed).
        WillReturnResult(sqlmock.NewResult(7, 1))
    mock.ExpectQuery(`FROM bookings WHERE id = \?`).
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(7, 5, 3, slotStart, slotEnd, model.BookingStatusConfirmed))
    mock.ExpectCommit()

    b, err := svc.Create(context.Background(), 3, slotStart, slotEnd, 5)
    require.NoError(t, err)
    assert.Equal(t, uint64(7), b.ID)
    assert.Equal(t, model.BookingStatusConfirmed, b.Status)

    ev := waitEvent(t, pub.events)
    assert.Equal(t, "booking_created", ev.Event)
    assert.Equal(t, uint64(7), ev.BookingID)
    assert.Equal(t, uint64(5), ev.UserID)
    assert.Equal(t, uint64(3), ev.RoomID)
    assert.Equal(t, "2025-01-15T09:00:00Z", ev.StartTime)
    assert.Equal(t, "2025-01-15T10:00:00Z", ev.EndTime)

    assert.Equal(t, uint64(3), waitRoom(t, inv.rooms))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingInvalidRange(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    _, err := svc.Create(context.Background(), 3, slotEnd, slotStart, 5)
    assert.ErrorIs(t, err, ErrInvalidRange)

    _, err = svc.Create(context.Background(), 3, slotStart, slotStart, 5)
    assert.ErrorIs(t, err, ErrInvalidRange)

    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingSlotConflict(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT is_active FROM rooms`).WithArgs(uint64(3)).WillReturnRows(activeRow(true))
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
        WithArgs(uint64(3), slotEnd, slotStart).
        WillReturnRows(overlapCount(1))
    mock.ExpectRollback()

    _, err := svc.Create(context.Background(), 3, slotStart, slotEnd, 5)
    assert.ErrorIs(t, err, ErrSlotConflict)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRoomMissing(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT is_active FROM rooms`).WithArgs(uint64(99)).WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := svc.Create(context.Background(), 99, slotStart, slotEnd, 5)
    assert.ErrorIs(t, err, ErrRoomUnavailable)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRoomInactive(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT is_active FROM rooms`).WithArgs(uint64(3)).WillReturnRows(activeRow(false))
    mock.ExpectRollback()

    _, err := svc.Create(context.Background(), 3, slotStart, slotEnd, 5)
    assert.ErrorIs(t, err, ErrRoomUnavailable)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingExcludesItself(t *testing.T) {
    svc, mock, _, inv := newTestService(t)

    newEnd := slotEnd.Add(30 * time.Minute)

    mock.ExpectBegin()
    mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(7, 5, 3, slotStart, slotEnd, model.BookingStatusConfirmed))
    mock.ExpectQuery(`SELECT is_active FROM rooms`).WithArgs(uint64(3)).WillReturnRows(activeRow(true))
    // The overlap scan binds the booking's own id so extending a booking
    // within its current slot does not conflict with itself.
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
        WithArgs(uint64(3), newEnd, slotStart, uint64(7)).
        WillReturnRows(overlapCount(0))
    mock.ExpectExec(`UPDATE bookings`).
        WithArgs(uint64(3), slotStart, newEnd, uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(`FROM bookings WHERE id = \?`).
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(7, 5, 3, slotStart, newEnd, model.BookingStatusConfirmed))
    mock.ExpectCommit()

    b, err := svc.Update(context.Background(), 7, 5, BookingPatch{EndTime: &newEnd})
    require.NoError(t, err)
    assert.Equal(t, newEnd, b.EndTime)

    assert.Equal(t, uint64(3), waitRoom(t, inv.rooms))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingMoveRoomLocksBothRooms(t *testing.T) {
    svc, mock, _, inv := newTestService(t)

    newRoom := uint64(1)

    mock.ExpectBegin()
    mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(7, 5, 3, slotStart, slotEnd, model.BookingStatusConfirmed))
    // Rooms are locked in ascending id order: target room 1 before old
    // room 3.
    mock.ExpectQuery(`SELECT is_active FROM rooms`).WithArgs(uint64(1)).WillReturnRows(activeRow(true))
    mock.ExpectQuery(`SELECT is_active FROM rooms`).WithArgs(uint64(3)).WillReturnRows(activeRow(true))
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
        WithArgs(uint64(1), slotEnd, slotStart, uint64(7)).
        WillReturnRows(overlapCount(0))
    mock.ExpectExec(`UPDATE bookings`).
        WithArgs(uint64(1), slotStart, slotEnd, uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(`FROM bookings WHERE id = \?`).
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(7, 5, 1, slotStart, slotEnd, model.BookingStatusConfirmed))
    mock.ExpectCommit()

    b, err := svc.Update(context.Background(), 7, 5, BookingPatch{RoomID: &newRoom})
    require.NoError(t, err)
    assert.Equal(t, newRoom, b.RoomID)

    // Both the old and the new room get their cached state dropped.
    seen := map[uint64]bool{waitRoom(t, inv.rooms): true, waitRoom(t, inv.rooms): true}
    assert.True(t, seen[1])
    assert.True(t, seen[3])
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingCancelledRejected(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    newEnd := slotEnd.Add(time.Hour)

    mock.ExpectBegin()
    mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(7, 5, 3, slotStart, slotEnd, model.BookingStatusCancelled))
    mock.ExpectRollback()

    _, err := svc.Update(context.Background(), 7, 5, BookingPatch{EndTime: &newEnd})
    assert.ErrorIs(t, err, ErrInvalidState)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingNotFound(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
        WithArgs(uint64(99)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := svc.Update(context.Background(), 99, 5, BookingPatch{})
    assert.ErrorIs(t, err, repository.ErrBookingNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking(t *testing.T) {
    svc, mock, _, inv := newTestService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(7, 5, 3, slotStart, slotEnd, model.BookingStatusConfirmed))
    mock.ExpectExec(`UPDATE bookings`).
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    require.NoError(t, svc.Cancel(context.Background(), 7, 5))
    assert.Equal(t, uint64(3), waitRoom(t, inv.rooms))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingIdempotent(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    // Already cancelled: the transaction commits without issuing the
    // status update and the call succeeds.
    mock.ExpectBegin()
    mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(7, 5, 3, slotStart, slotEnd, model.BookingStatusCancelled))
    mock.ExpectCommit()

    require.NoError(t, svc.Cancel(context.Background(), 7, 5))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func roomRows(id uint64, active bool) *sqlmock.Rows {
    now := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
    return sqlmock.NewRows([]string{"id", "name", "capacity", "equipment", "location", "is_active", "created_at", "updated_at"}).
        AddRow(id, "Boardroom", 8, []byte(`[]`), "2F", active, now, now)
}

func TestCheckAvailability(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(uint64(3)).WillReturnRows(roomRows(3, true))
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
        WithArgs(uint64(3), slotEnd, slotStart).
        WillReturnRows(overlapCount(0))

    free, err := svc.CheckAvailability(context.Background(), 3, slotStart, slotEnd)
    require.NoError(t, err)
    assert.True(t, free)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityBusy(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(uint64(3)).WillReturnRows(roomRows(3, true))
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
        WithArgs(uint64(3), slotEnd, slotStart).
        WillReturnRows(overlapCount(1))

    free, err := svc.CheckAvailability(context.Background(), 3, slotStart, slotEnd)
    require.NoError(t, err)
    assert.False(t, free)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityInactiveRoom(t *testing.T) {
    svc, mock, _, _ := newTestService(t)

    mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(uint64(3)).WillReturnRows(roomRows(3, false))

    _, err := svc.CheckAvailability(context.Background(), 3, slotStart, slotEnd)
    assert.ErrorIs(t, err, ErrRoomUnavailable)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockOrder(t *testing.T) {
    assert.Equal(t, []uint64{3}, lockOrder(3, 3))
    assert.Equal(t, []uint64{1, 3}, lockOrder(3, 1))
    assert.Equal(t, []uint64{1, 3}, lockOrder(1, 3))
}
