package webapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/internal/order"
	"github.com/Iam-Iftekhar/animerch/internal/webserver"
)

func (h *Handler) checkout(c echo.Context) error {
	ident := webserver.CurrentIdentity(c)
	view, err := h.cart.GetView(c.Request().Context(), ident.UserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load cart", nil)
	}
	if len(view.Items) == 0 {
		return c.Redirect(http.StatusSeeOther, "/cart")
	}
	return ok(c, map[string]interface{}{
		"items":       view.Items,
		"total_price": view.TotalPrice,
		"user":        ident,
	})
}

func (h *Handler) placeOrder(c echo.Context) error {
	ident := webserver.CurrentIdentity(c)

	placed, err := h.orders.Place(c.Request().Context(), ident.UserID)
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		return c.Redirect(http.StatusSeeOther, "/cart")
	case err != nil:
		return fail(c, http.StatusInternalServerError, "ORDER_ERROR", "Failed to place order", nil)
	}

	webserver.SetFlash(c, "Order placed, thank you!")
	c.Response().Header().Set("X-Order-Id", strconv.FormatInt(placed.ID, 10))
	return c.Redirect(http.StatusSeeOther, "/orders/success")
}

func (h *Handler) orderSuccess(c echo.Context) error {
	return ok(c, map[string]interface{}{
		"message": "Order placed successfully",
		"flash":   webserver.TakeFlash(c),
		"user":    webserver.CurrentIdentity(c),
	})
}

func (h *Handler) myOrders(c echo.Context) error {
	ident := webserver.CurrentIdentity(c)
	rows, err := h.orders.ListByUser(c.Request().Context(), ident.UserID,
		c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", nil)
	}
	return ok(c, rows)
}

func (h *Handler) getOrder(c echo.Context) error {
	id, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	ident := webserver.CurrentIdentity(c)

	ord, err := h.orders.Get(c.Request().Context(), ident.UserID, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", nil)
	}
	return ok(c, ord)
}
