package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serve(req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(Middleware(Config{}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/", ok)
	e.POST("/", ok)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	rec := serve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  int
	}{
		{name: "no session cookie", setup: func(*http.Request) {}, want: http.StatusNoContent},
		{name: "bearer token", setup: func(r *http.Request) {
			r.Header.Set(echo.HeaderAuthorization, "Bearer x")
			r.AddCookie(&http.Cookie{Name: "accessToken", Value: "x"})
		}, want: http.StatusNoContent},
		{name: "cookie without csrf header", setup: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "accessToken", Value: "x"})
			r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
		}, want: http.StatusForbidden},
		{name: "cookie with matching header", setup: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "accessToken", Value: "x"})
			r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
			r.Header.Set("X-CSRF-Token", "tok")
		}, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			tt.setup(req)
			assert.Equal(t, tt.want, serve(req).Code)
		})
	}
}
