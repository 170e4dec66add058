package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/meeting-room-booking/internal/model"
    "github.com/iliyamo/meeting-room-booking/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/my-bookings", nil)
    if authHeader != "" {
        req.Header.Set("Authorization", authHeader)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    handler := mw(func(c echo.Context) error {
        return c.NoContent(http.StatusOK)
    })
    require.NoError(t, handler(c))
    return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 42, model.RoleRegular, 15)
    require.NoError(t, err)

    rec, c := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)
    assert.Equal(t, http.StatusOK, rec.Code)
    // Numeric claims decode as float64.
    assert.Equal(t, float64(42), c.Get("user_id"))
    assert.Equal(t, model.RoleRegular, c.Get("role"))
}

func TestJWTAuthMissingHeader(t *testing.T) {
    rec, _ := doRequest(t, JWTAuth(testSecret), "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
    tok, err := utils.NewAccessToken("other-secret", 42, model.RoleRegular, 15)
    require.NoError(t, err)

    rec, _ := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
    cases := []struct {
        name    string
        role    interface{}
        allowed []string
        want    int
    }{
        {"allowed role", model.RoleAdmin, []string{model.RoleAdmin, model.RoleAuditor}, http.StatusOK},
        {"denied role", model.RoleRegular, []string{model.RoleAdmin}, http.StatusForbidden},
        {"missing role", nil, []string{model.RoleAdmin}, http.StatusForbidden},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            e := echo.New()
            req := httptest.NewRequest(http.MethodGet, "/v1/bookings", nil)
            rec := httptest.NewRecorder()
            c := e.NewContext(req, rec)
            if tc.role != nil {
                c.Set("role", tc.role)
            }

            handler := RequireRole(tc.allowed...)(func(c echo.Context) error {
                return c.NoContent(http.StatusOK)
            })
            require.NoError(t, handler(c))
            assert.Equal(t, tc.want, rec.Code)
        })
    }
}
