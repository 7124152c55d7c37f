package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/tokens"
)

var secret = []byte("test-jwt-secret")

func token(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(id, role, time.Now().Add(time.Minute), secret)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, h echo.MiddlewareFunc, setup func(*http.Request)) (error, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	setup(req)
	c := e.NewContext(req, httptest.NewRecorder())
	err := h(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return err, c
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he.Code
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	m := New(secret)

	err, c := run(t, m.RequireAuth, func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, 7, models.RoleUser))
	})
	require.NoError(t, err)
	id, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
	assert.Equal(t, models.RoleUser, Role(c))

	err, c = run(t, m.RequireAuth, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: token(t, 9, models.RoleUser)})
	})
	require.NoError(t, err)
	id, _ = UserID(c)
	assert.Equal(t, uint(9), id)

	err, _ = run(t, m.RequireAuth, func(*http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	err, _ = run(t, m.RequireAuth, func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	})
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	m := New(secret)

	err, _ := run(t, m.RequireAdmin, func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, 1, models.RoleUser))
	})
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))

	err, _ = run(t, m.RequireAdmin, func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, 1, models.RoleAdmin))
	})
	assert.NoError(t, err)
}
