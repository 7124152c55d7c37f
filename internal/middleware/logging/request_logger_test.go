package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/logging"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.New("debug", &buf)))
	e.GET("/ping", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside")
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	e.ServeHTTP(rec, req)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	var lines []map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 3)
	assert.Equal(t, "inside", lines[0]["msg"])
	assert.Equal(t, "rid-1", lines[0]["request_id"])
	assert.Equal(t, float64(200), lines[1]["status"])
	assert.Equal(t, "WARN", lines[2]["level"])
}
