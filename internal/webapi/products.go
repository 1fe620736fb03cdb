package webapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Iam-Iftekhar/animerch/internal/catalog"
	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/internal/webserver"
)

// merchCategory backs the dedicated merch page, mirroring the storefront's
// named landing category.
const merchCategory = "Merchandise"

func (h *Handler) home(c echo.Context) error {
	products, err := h.catalog.ListAll(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	return ok(c, map[string]interface{}{
		"products": products,
		"user":     webserver.CurrentIdentity(c),
		"flash":    webserver.TakeFlash(c),
	})
}

func (h *Handler) listProducts(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		rows []domain.Product
		err  error
	)
	if name := strings.TrimSpace(c.QueryParam("category")); name != "" {
		rows, err = h.catalog.ListByCategory(ctx, name)
	} else if seller := strings.TrimSpace(c.QueryParam("seller")); seller != "" {
		sellerID, perr := strconv.ParseInt(seller, 10, 64)
		if perr != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid seller ID", nil)
		}
		rows, err = h.catalog.ListBySeller(ctx, sellerID)
	} else {
		rows, err = h.catalog.ListAll(ctx)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}

	total := int64(len(rows))
	page, pageSize := parsePagination(c)
	offset := (page - 1) * pageSize
	if offset > len(rows) {
		offset = len(rows)
	}
	limit := offset + pageSize
	if limit > len(rows) {
		limit = len(rows)
	}
	return paged(c, rows[offset:limit], total, page, pageSize)
}

func (h *Handler) getProduct(c echo.Context) error {
	id, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := h.catalog.Get(c.Request().Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", nil)
	}
	return ok(c, map[string]interface{}{
		"product": p,
		"user":    webserver.CurrentIdentity(c),
	})
}

func (h *Handler) merchPage(c echo.Context) error {
	ctx := c.Request().Context()
	products, err := h.catalog.ListByCategory(ctx, merchCategory)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	recent, err := h.catalog.ListRecent(ctx, 10)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	return ok(c, map[string]interface{}{
		"products":     products,
		"recent_items": recent,
		"user":         webserver.CurrentIdentity(c),
	})
}

func (h *Handler) sellerProducts(c echo.Context) error {
	ident := webserver.CurrentIdentity(c)
	rows, err := h.catalog.ListBySeller(c.Request().Context(), ident.UserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	return ok(c, rows)
}

func (h *Handler) createProduct(c echo.Context) error {
	ident := webserver.CurrentIdentity(c)

	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid price", nil)
	}
	stock := 0
	if v := c.FormValue("stock"); v != "" {
		stock, err = strconv.Atoi(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid stock", nil)
		}
	}

	imageRef := ""
	if fh, err := c.FormFile("image"); err == nil {
		imageRef, err = h.files.Save(fh)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to store image", nil)
		}
	}

	in := catalog.CreateProductInput{
		Title:        c.FormValue("title"),
		Description:  c.FormValue("description"),
		Price:        price,
		Stock:        stock,
		CategoryName: c.FormValue("category_name"),
		Image:        imageRef,
	}
	_, err = h.catalog.Create(c.Request().Context(), in, ident)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Only sellers can add products", nil)
	case errors.Is(err, catalog.ErrTitleRequired),
		errors.Is(err, catalog.ErrBadPrice),
		errors.Is(err, catalog.ErrBadStock):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", nil)
	}

	return c.Redirect(http.StatusSeeOther, "/admin/products")
}

func (h *Handler) deleteProduct(c echo.Context) error {
	id, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	ident := webserver.CurrentIdentity(c)

	err := h.catalog.Delete(c.Request().Context(), id, ident)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Not your listing", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", nil)
	}
	return c.Redirect(http.StatusSeeOther, "/admin/products")
}
