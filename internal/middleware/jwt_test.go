package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/arashpm/intern-seat-reservation/internal/model"
    "github.com/arashpm/intern-seat-reservation/internal/utils"
)

const testSecret = "test-secret"

func run(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if authHeader != "" {
        req.Header.Set("Authorization", authHeader)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
    require.NoError(t, mw(next)(c))
    return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 42, model.RoleIntern, 5)
    require.NoError(t, err)

    rec, c := run(t, JWTAuth(testSecret), "Bearer "+tok.Token)
    require.Equal(t, http.StatusOK, rec.Code)

    // Numeric claims come back as float64 after JSON decoding.
    assert.EqualValues(t, 42, c.Get("user_id"))
    assert.Equal(t, model.RoleIntern, c.Get("role"))
}

func TestJWTAuthRejects(t *testing.T) {
    tok, err := utils.NewAccessToken("other-secret", 42, model.RoleIntern, 5)
    require.NoError(t, err)

    cases := []struct {
        name   string
        header string
    }{
        {"missing header", ""},
        {"not bearer", "Basic abc"},
        {"garbage token", "Bearer not.a.jwt"},
        {"wrong secret", "Bearer " + tok.Token},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            rec, _ := run(t, JWTAuth(testSecret), tc.header)
            assert.Equal(t, http.StatusUnauthorized, rec.Code)
        })
    }
}

func TestJWTAuthExpiredToken(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 42, model.RoleIntern, -5)
    require.NoError(t, err)
    rec, _ := run(t, JWTAuth(testSecret), "Bearer "+tok.Token)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
    e := echo.New()
    next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

    call := func(role interface{}) *httptest.ResponseRecorder {
        req := httptest.NewRequest(http.MethodGet, "/", nil)
        rec := httptest.NewRecorder()
        c := e.NewContext(req, rec)
        if role != nil {
            c.Set("role", role)
        }
        require.NoError(t, RequireRole(model.RoleAdmin)(next)(c))
        return rec
    }

    assert.Equal(t, http.StatusOK, call(model.RoleAdmin).Code)
    assert.Equal(t, http.StatusForbidden, call(model.RoleIntern).Code)
    assert.Equal(t, http.StatusForbidden, call(nil).Code)
    assert.Equal(t, http.StatusForbidden, call(123).Code)
}
