package session

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/db/dbtest"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/service"
)

type testEnv struct {
	repo    *repo.GormRepo
	auth    *service.AuthService
	catalog *service.CatalogService
	cart    *service.CartService
	orders  *service.OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: dbtest.New(t)}
	events := mykafka.Nop{}
	return &testEnv{
		repo:    r,
		auth:    &service.AuthService{Repo: r, Events: events},
		catalog: &service.CatalogService{Repo: r, Events: events},
		cart:    &service.CartService{Repo: r, Events: events},
		orders:  &service.OrderService{Repo: r, Events: events},
	}
}

// run feeds the lines to a fresh session and returns everything it printed.
func (e *testEnv) run(t *testing.T, lines ...string) string {
	t.Helper()

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	s := New(in, &out, e.auth, e.catalog, e.cart, e.orders)
	require.NoError(t, s.Run(context.Background()))
	return out.String()
}

func (e *testEnv) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := e.repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

var (
	registerAlice = []string{"1", "alice", "secret1"}
	registerBob   = []string{"1", "bob", "secret1"}
	loginAlice    = []string{"2", "alice", "secret1"}
	loginBob      = []string{"2", "bob", "secret1"}
	createLamp    = []string{"4", "Lamp", "50", "warm light", "3", ""}
	logout        = []string{"9"}
)

func script(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestShoppingSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	out := env.run(t, script(
		registerAlice, registerBob,
		loginAlice, createLamp, logout,
		loginBob,
		[]string{"1", "1", "a", "2", ""},
		[]string{"5", "c"},
		[]string{"7", ""},
		[]string{"0"},
	)...)

	assert.Contains(t, out, "Registration successful!")
	assert.Contains(t, out, `Product "Lamp" created with id 1.`)
	assert.Contains(t, out, "Logged out successfully!")
	assert.Contains(t, out, "Lamp added to your cart (2 in cart).")
	assert.Contains(t, out, "Order #1 placed.")
	assert.Contains(t, out, "Lamp (x2) - $100.00")
	assert.Contains(t, out, "Total: $100.00")
	assert.Contains(t, out, "pending")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))

	assert.Equal(t, 1, env.stock(t, 1))
}

func TestCancelOrderRestocks(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	out := env.run(t, script(
		registerAlice, registerBob,
		loginAlice, createLamp, logout,
		loginBob,
		[]string{"1", "1", "a", "3", ""},
		[]string{"6"},
		[]string{"7", "1", "y"},
	)...)

	assert.Contains(t, out, "Order #1 placed.")
	assert.Contains(t, out, "Order canceled.")
	assert.Equal(t, 3, env.stock(t, 1))

	order, err := env.orders.Get(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, order.Status)
}

func TestSessionErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	out := env.run(t, script(
		[]string{"42"},
		[]string{"2", "ghost", "secret1"},
		registerAlice, registerAlice,
		loginAlice, createLamp,
		[]string{"1", "1", "a", "1", ""},
		[]string{"6"},
	)...)

	assert.Contains(t, out, "Invalid choice.")
	assert.Equal(t, 4, strings.Count(out, "Error:"), out)
	assert.Contains(t, out, "Goodbye!")
	assert.Equal(t, 3, env.stock(t, 1))
}

func TestEditAndDeleteProduct(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	out := env.run(t, script(
		registerAlice, loginAlice, createLamp,
		[]string{"3", "1", "e", "", "60", "", "", ""},
		[]string{"3", "1", "e", "", "", "", "", ""},
	)...)
	assert.Contains(t, out, "Product updated.")
	assert.Contains(t, out, "Nothing to update.")

	p, err := env.repo.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "60.00", p.Price.StringFixed(2))
	assert.Equal(t, "Lamp", p.Name)

	out = env.run(t, script(loginAlice, []string{"3", "1", "d", "y", "3"})...)
	assert.Contains(t, out, "Product deleted.")
	assert.Contains(t, out, "You have no products yet.")
}

func TestViewCartRemoveAndClear(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	out := env.run(t, script(
		registerAlice, registerBob,
		loginAlice, createLamp, logout,
		loginBob,
		[]string{"1", "1", "a", "1", ""},
		[]string{"5", "1"},
		[]string{"1", "1", "a", "1", ""},
		[]string{"5", "x", "y"},
	)...)

	assert.Contains(t, out, "Item removed from your cart.")
	assert.Contains(t, out, "Your cart is currently empty.")
	assert.Contains(t, out, "Cart cleared.")
}

func TestInvalidInputIsPromptedAgain(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	out := env.run(t, script(
		registerAlice, registerBob,
		loginAlice,
		[]string{"4", "", "Lamp", "abc", "-1", "50", "warm light", "many", "3", ""},
		[]string{"3", "1", "e", "", "1.234", "60", "", "x", "", ""},
		logout,
		loginBob,
		[]string{"1", "1", "a", "abc", "9", "0", "2", ""},
	)...)

	assert.Contains(t, out, `Product "Lamp" created with id 1.`)
	assert.Contains(t, out, "Please try again.")
	assert.Contains(t, out, "quantity must be between 1 and 3")
	assert.Contains(t, out, "Product updated.")
	assert.Contains(t, out, "Lamp added to your cart (2 in cart).")

	p, err := env.repo.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "60.00", p.Price.StringFixed(2))
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, "warm light", p.Description)
}

func TestDeletedAccountLogsOut(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	seller, err := env.auth.Register(ctx, "seller", "secret1")
	require.NoError(t, err)
	_, err = env.catalog.CreateFromInput(ctx, seller.ID, service.ProductInput{Name: "Lamp", Price: "50", Quantity: "3"})
	require.NoError(t, err)
	buyer, err := env.auth.Register(ctx, "buyer", "secret1")
	require.NoError(t, err)
	require.NoError(t, env.auth.DeleteAccount(ctx, buyer.ID))

	var out bytes.Buffer
	in := strings.NewReader(strings.Join([]string{"1", "1", "a", "1", "0"}, "\n") + "\n")
	s := New(in, &out, env.auth, env.catalog, env.cart, env.orders)
	s.user = buyer
	require.NoError(t, s.Run(ctx))

	assert.Contains(t, out.String(), "User not found")
	assert.Contains(t, out.String(), "You have been logged out.")
	assert.Nil(t, s.user)

	var carts int64
	require.NoError(t, env.repo.DB.Model(&models.CartItem{}).Count(&carts).Error)
	assert.Zero(t, carts)
}
