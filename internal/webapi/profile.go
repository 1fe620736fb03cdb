package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Iam-Iftekhar/animerch/internal/webserver"
)

// profileDashboard branches on role: sellers get sales aggregates, buyers
// their recent orders.
func (h *Handler) profileDashboard(c echo.Context) error {
	ident := webserver.CurrentIdentity(c)
	ctx := c.Request().Context()

	if ident.IsSeller() || ident.IsAdmin() {
		stats, err := h.reporting.SellerStats(ctx, ident.UserID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to aggregate sales", nil)
		}
		return ok(c, map[string]interface{}{
			"user":  ident,
			"stats": stats,
		})
	}

	recent, err := h.orders.Recent(ctx, ident.UserID, 5)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", nil)
	}
	return ok(c, map[string]interface{}{
		"user":          ident,
		"recent_orders": recent,
	})
}

func (h *Handler) updateProfile(c echo.Context) error {
	ident := webserver.CurrentIdentity(c)

	avatarRef := ""
	if fh, err := c.FormFile("avatar"); err == nil {
		avatarRef, err = h.files.Save(fh)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to store avatar", nil)
		}
	}

	err := h.identity.UpdateProfile(c.Request().Context(), ident.UserID, c.FormValue("username"), avatarRef)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile", nil)
	}
	return c.Redirect(http.StatusSeeOther, "/profile")
}

func (h *Handler) exportSales(c echo.Context) error {
	ident := webserver.CurrentIdentity(c)

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	return h.reporting.ExportSalesCSV(c.Request().Context(), ident.UserID, c.Response())
}
