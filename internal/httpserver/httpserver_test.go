package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/db/dbtest"
	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

type testEnv struct {
	E *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: dbtest.New(t)}
	events := mykafka.Nop{}
	secret := []byte("test-jwt-secret")

	orders := &service.OrderService{Repo: r, Events: events}
	d := &Deps{
		AuthHandler: &AuthHTTP{Svc: &service.AuthService{
			Repo: r, Events: events, JWTSecret: secret, AccessTTL: time.Minute, Admins: []string{"admin"},
		}},
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: events}},
		CartHandler:    &CartHTTP{Svc: &service.CartService{Repo: r, Events: events}, Orders: orders},
		OrderHandler:   &OrderHTTP{Svc: orders},
		JWTSecret:      secret,
	}
	return &testEnv{E: New(d)}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, username string) string {
	t.Helper()

	creds := transport.CredentialsRequest{Username: username, Password: "secret1"}
	rec := env.do(t, http.MethodPost, "/api/v1/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp transport.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", "", nil).Code)
}

func TestRegisterAndLoginErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.login(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/v1/register", "", transport.CredentialsRequest{Username: "alice", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/register", "", transport.CredentialsRequest{Username: "al", Password: "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/login", "", transport.CredentialsRequest{Username: "alice", Password: "nope123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/login", "", transport.CredentialsRequest{Username: "ghost", Password: "secret1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShoppingFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seller := env.login(t, "seller")
	buyer := env.login(t, "buyer")
	admin := env.login(t, "admin")

	rec := env.do(t, http.MethodPost, "/api/v1/products", seller, map[string]any{
		"name": "Lamp", "price": "50", "description": "warm light", "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[models.Product](t, rec)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", product.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.ProductView](t, rec)
	assert.Equal(t, "seller", view.CreatorName)

	rec = env.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/products/%d", product.ID), buyer, map[string]any{"price": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/checkout", buyer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrEmptyCart.Error())

	rec = env.do(t, http.MethodPost, "/api/v1/cart", seller, transport.AddToCartRequest{ProductID: product.ID, Quantity: 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart", buyer, transport.AddToCartRequest{ProductID: product.ID, Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/search?q=lamp", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Lamp"`)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/checkout", buyer, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Equal(t, "100.00", order.Total.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, order.Status)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), seller, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	shipPath := fmt.Sprintf("/api/v1/admin/orders/%d/ship", order.ID)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, shipPath, buyer, nil).Code)

	rec = env.do(t, http.MethodPost, shipPath, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.OrderStatusShipped, decode[models.Order](t, rec).Status)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", order.ID), buyer, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/orders", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"shipped"`)
}

func TestAccountEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.login(t, "taken")
	tok := env.login(t, "alice")

	rec := env.do(t, http.MethodPatch, "/api/v1/me/username", tok, transport.UpdateUsernameRequest{Username: "taken"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/me/username", tok, transport.UpdateUsernameRequest{Username: "alicia"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alicia", decode[models.User](t, rec).Username)

	rec = env.do(t, http.MethodPatch, "/api/v1/me/password", tok, transport.UpdatePasswordRequest{CurrentPassword: "bad", NewPassword: "newsecret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/me", tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/me", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{domain.ErrInsufficientStock, http.StatusConflict},
		{domain.ErrUnavailable, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}
