// Package webapi maps HTTP requests onto the core services and converts
// their results and sentinel errors into responses.
package webapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": "OK",
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":     "OK",
		"data":     rows,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func paramID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil
}
