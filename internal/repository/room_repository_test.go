package repository

import (
    "context"
    "database/sql"
    "errors"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/meeting-room-booking/internal/model"
)

func TestLockTxReturnsActiveFlag(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewRoomRepo(db)

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT is_active FROM rooms WHERE id = \? FOR UPDATE`).
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(false))
    mock.ExpectRollback()

    tx, err := db.BeginTx(context.Background(), nil)
    require.NoError(t, err)
    active, err := repo.LockTx(context.Background(), tx, 3)
    require.NoError(t, err)
    assert.False(t, active)
    require.NoError(t, tx.Rollback())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockTxUnknownRoom(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewRoomRepo(db)

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT is_active FROM rooms`).
        WithArgs(uint64(99)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    tx, err := db.BeginTx(context.Background(), nil)
    require.NoError(t, err)
    _, err = repo.LockTx(context.Background(), tx, 99)
    assert.ErrorIs(t, err, ErrRoomNotFound)
    require.NoError(t, tx.Rollback())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomDuplicateName(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewRoomRepo(db)

    mock.ExpectExec(`INSERT INTO rooms`).
        WillReturnError(errors.New("Error 1062: Duplicate entry 'Boardroom' for key 'rooms.name'"))

    err := repo.Create(context.Background(), &model.Room{Name: "Boardroom", Capacity: 8, Equipment: []string{}})
    assert.ErrorIs(t, err, ErrRoomNameExists)
    assert.NoError(t, mock.ExpectationsWereMet())
}
