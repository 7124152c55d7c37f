package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/marketplace/internal/middleware/auth"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)
	page, size := pageParams(c)

	meta, orders, err := h.Svc.List(ctx, userID, page, size)
	if err != nil {
		return fail(ctx, "get_orders_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"meta": meta, "orders": orders})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest(ctx, "get_order_error", "invalid id", err)
	}

	order, err := h.Svc.Get(ctx, userID, id)
	if err != nil {
		return fail(ctx, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest(ctx, "cancel_order_error", "invalid id", err)
	}

	order, err := h.Svc.Cancel(ctx, userID, id)
	if err != nil {
		return fail(ctx, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ShipOrder(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest(ctx, "ship_order_error", "invalid id", err)
	}

	order, err := h.Svc.Ship(ctx, id)
	if err != nil {
		return fail(ctx, "ship_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}
