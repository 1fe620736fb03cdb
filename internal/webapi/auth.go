package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Iam-Iftekhar/animerch/internal/identity"
	"github.com/Iam-Iftekhar/animerch/internal/webserver"
)

type registerForm struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

type loginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *Handler) register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	if form.Username == "" || form.Email == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and email are required", nil)
	}

	_, err := h.identity.Register(c.Request().Context(), form.Username, form.Email, form.Password, form.Role)
	switch {
	case errors.Is(err, identity.ErrEmailTaken):
		return fail(c, http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered", nil)
	case errors.Is(err, identity.ErrUsernameTaken):
		return fail(c, http.StatusBadRequest, "USERNAME_TAKEN", "Username already registered", nil)
	case errors.Is(err, identity.ErrPasswordTooLong):
		return fail(c, http.StatusBadRequest, "PASSWORD_TOO_LONG", "Password too long (max 72 bytes)", nil)
	case errors.Is(err, identity.ErrPasswordTooShort):
		return fail(c, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "Password too short", nil)
	case errors.Is(err, identity.ErrInvalidRole):
		return fail(c, http.StatusBadRequest, "INVALID_ROLE", "Unknown role", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Registration failed", nil)
	}

	return c.Redirect(http.StatusSeeOther, webserver.LoginPath)
}

func (h *Handler) login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}

	token, err := h.identity.Authenticate(c.Request().Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, identity.ErrPasswordTooLong):
		return fail(c, http.StatusBadRequest, "PASSWORD_TOO_LONG", "Password too long", nil)
	case errors.Is(err, identity.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "AUTH_ERROR", "Login failed", nil)
	}

	h.ws.SetTokenCookie(c, token)
	webserver.SetFlash(c, "Welcome back!")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) logout(c echo.Context) error {
	h.ws.ClearTokenCookie(c)
	return c.Redirect(http.StatusSeeOther, webserver.LoginPath)
}
