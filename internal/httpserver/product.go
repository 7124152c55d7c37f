package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/marketplace/internal/middleware/auth"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageParams(c echo.Context) (int, int) {
	return util.ParseIntDefault(c.QueryParam("page"), 1), util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	page, size := pageParams(c)

	meta, items, err := h.Svc.List(ctx, page, size)
	if err != nil {
		return fail(ctx, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"meta": meta, "products": items})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest(ctx, "get_product_error", "invalid id", err)
	}

	product, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(ctx, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	page, size := pageParams(c)

	meta, items, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(ctx, "search_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"meta": meta, "products": items})
}

func (h *CatalogHTTP) MyProducts(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	items, err := h.Svc.ListMine(ctx, userID)
	if err != nil {
		return fail(ctx, "my_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(ctx, "create_product_error", "invalid body", err)
	}

	product, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		return fail(ctx, "create_product_error", err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest(ctx, "patch_product_error", "invalid id", err)
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(ctx, "patch_product_error", "invalid body", err)
	}

	product, err := h.Svc.Update(ctx, userID, id, req)
	if err != nil {
		return fail(ctx, "patch_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest(ctx, "delete_product_error", "invalid id", err)
	}

	if err := h.Svc.Delete(ctx, userID, id); err != nil {
		return fail(ctx, "delete_product_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
