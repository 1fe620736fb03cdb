package webapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Iam-Iftekhar/animerch/internal/cart"
	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/internal/webserver"
)

func (h *Handler) viewCart(c echo.Context) error {
	ident := webserver.CurrentIdentity(c)
	view, err := h.cart.GetView(c.Request().Context(), ident.UserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load cart", nil)
	}
	return ok(c, map[string]interface{}{
		"cart":        view.Cart,
		"items":       view.Items,
		"total_price": view.TotalPrice,
		"user":        ident,
		"flash":       webserver.TakeFlash(c),
	})
}

func (h *Handler) addToCart(c echo.Context) error {
	productID, valid := paramID(c, "product_id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	ident := webserver.CurrentIdentity(c)

	err := h.cart.AddItem(c.Request().Context(), ident.UserID, productID)
	switch {
	case errors.Is(err, cart.ErrSelfPurchase):
		// silent no-op back to the listing; sellers never see an error
		// for trying to buy their own product
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/products/%d", productID))
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add to cart", nil)
	}
	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *Handler) removeFromCart(c echo.Context) error {
	itemID, valid := paramID(c, "item_id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID", nil)
	}
	ident := webserver.CurrentIdentity(c)

	err := h.cart.RemoveItem(c.Request().Context(), ident.UserID, itemID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Cart item not found", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to remove item", nil)
	}
	return c.Redirect(http.StatusSeeOther, "/cart")
}
