package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authmw "github.com/Skotchmaster/marketplace/internal/middleware/auth"
	"github.com/Skotchmaster/marketplace/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/marketplace/internal/middleware/logging"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	JWTSecret      []byte
	Logger         *slog.Logger
	// Ready reports whether the store is reachable.
	Ready func(ctx context.Context) error
}

// New builds the echo instance with the common middleware stack and routes.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	if d.Logger != nil {
		e.Use(loggingmw.RequestLogger(d.Logger))
	}
	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := authmw.New(d.JWTSecret)

	v1 := e.Group("/api/v1", csrf.Middleware(csrf.Config{SessionCookie: authmw.CookieName}))

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)
	v1.GET("/search", d.CatalogHandler.Search)

	products := v1.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, authMW.RequireAuth)
	products.PATCH("/:id", d.CatalogHandler.PatchProduct, authMW.RequireAuth)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, authMW.RequireAuth)

	me := v1.Group("/me", authMW.RequireAuth)
	me.GET("", d.AuthHandler.Me)
	me.PATCH("/username", d.AuthHandler.UpdateUsername)
	me.PATCH("/password", d.AuthHandler.UpdatePassword)
	me.DELETE("", d.AuthHandler.DeleteAccount)
	me.GET("/products", d.CatalogHandler.MyProducts)

	cart := v1.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.DELETE("/:id", d.CartHandler.RemoveFromCart)
	cart.POST("/checkout", d.CartHandler.Checkout)

	orders := v1.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.GetOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)

	admin := v1.Group("/admin", authMW.RequireAdmin)
	admin.POST("/orders/:id/ship", d.OrderHandler.ShipOrder)
}
