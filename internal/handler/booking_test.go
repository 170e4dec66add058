package handler

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/meeting-room-booking/internal/repository"
    "github.com/iliyamo/meeting-room-booking/internal/service"
)

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })

    svc := service.NewBookingService(repository.NewBookingRepo(db), repository.NewRoomRepo(db), nil, nil)
    return NewBookingHandler(svc), mock
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    return req, httptest.NewRecorder()
}

func TestCreateBookingConflictMapsTo409(t *testing.T) {
    h, mock := newBookingHandler(t)

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT is_active FROM rooms`).
        WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
        WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
    mock.ExpectRollback()

    body := `{"room_id":3,"start_time":"2025-01-15T09:00:00Z","end_time":"2025-01-15T10:00:00Z"}`
    req, rec := jsonRequest(http.MethodPost, "/v1/bookings", body)
    c := echo.New().NewContext(req, rec)
    c.Set("user_id", float64(5))
    c.Set("role", "regular")

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.Contains(t, rec.Body.String(), "already booked")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingInvalidRangeMapsTo400(t *testing.T) {
    h, mock := newBookingHandler(t)

    body := `{"room_id":3,"start_time":"2025-01-15T10:00:00Z","end_time":"2025-01-15T09:00:00Z"}`
    req, rec := jsonRequest(http.MethodPost, "/v1/bookings", body)
    c := echo.New().NewContext(req, rec)
    c.Set("user_id", float64(5))

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingMissingIdentity(t *testing.T) {
    h, _ := newBookingHandler(t)

    body := `{"room_id":3,"start_time":"2025-01-15T09:00:00Z","end_time":"2025-01-15T10:00:00Z"}`
    req, rec := jsonRequest(http.MethodPost, "/v1/bookings", body)
    c := echo.New().NewContext(req, rec)

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
    h, mock := newBookingHandler(t)

    now := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
    roomCols := []string{"id", "name", "capacity", "equipment", "location", "is_active", "created_at", "updated_at"}
    mock.ExpectQuery(`FROM rooms WHERE id = \?`).
        WillReturnRows(sqlmock.NewRows(roomCols).
            AddRow(3, "Boardroom", 8, []byte(`[]`), "2F", true, now, now))
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
        WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))

    req, rec := jsonRequest(http.MethodGet,
        "/v1/bookings/availability?room_id=3&start_time=2025-01-15T09%3A00%3A00Z&end_time=2025-01-15T10%3A00%3A00Z", "")
    c := echo.New().NewContext(req, rec)

    require.NoError(t, h.Availability(c))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"available":true`)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRejectsBadParams(t *testing.T) {
    h, _ := newBookingHandler(t)

    req, rec := jsonRequest(http.MethodGet, "/v1/bookings/availability?room_id=abc", "")
    c := echo.New().NewContext(req, rec)

    require.NoError(t, h.Availability(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}
