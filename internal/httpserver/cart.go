package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/marketplace/internal/middleware/auth"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
)

type CartHTTP struct {
	Svc    *service.CartService
	Orders *service.OrderService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	lines, total, err := h.Svc.View(ctx, userID)
	if err != nil {
		return fail(ctx, "get_cart_error", err)
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": lines, "total": total})
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(ctx, "add_to_cart_error", "invalid body", err)
	}

	item, err := h.Svc.Add(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(ctx, "add_to_cart_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)
	productID, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest(ctx, "remove_from_cart_error", "invalid id", err)
	}

	if err := h.Svc.Remove(ctx, userID, productID); err != nil {
		return fail(ctx, "remove_from_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(ctx, "clear_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	order, err := h.Orders.Checkout(ctx, userID)
	if err != nil {
		return fail(ctx, "checkout_error", err)
	}
	return c.JSON(http.StatusCreated, order)
}
