package webserver

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Iam-Iftekhar/animerch/internal/identity"
)

const identityKey = "identity"

// LoginPath is where unauthenticated browsers get redirected.
const LoginPath = "/auth/login"

// jwtMiddleware validates the access_token cookie's signature and expiry.
// A missing or invalid token redirects to the login page rather than
// returning a bare 401.
func (w *WebServer) jwtMiddleware() echo.MiddlewareFunc {
	alg := w.cfg.Jwt.Algorithm
	if alg == "" {
		alg = "HS256"
	}
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(w.cfg.Jwt.Secret),
		SigningMethod: alg,
		TokenLookup:   "cookie:" + AccessTokenCookie,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(identity.SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.Redirect(http.StatusFound, LoginPath)
		},
	})
}

// resolveIdentity turns validated claims into an Identity backed by the
// current user row, so a stale role claim can not widen access.
func (w *WebServer) resolveIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			claims, ok := token.Claims.(*identity.SessionClaims)
			if !ok {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			ident, err := w.identity.ResolveSubject(c.Request().Context(), claims.Subject)
			if err != nil {
				zap.L().Info("session subject no longer resolvable",
					zap.String("subject", claims.Subject))
				w.ClearTokenCookie(c)
				return c.Redirect(http.StatusFound, LoginPath)
			}
			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

// AuthRequired guards a route group with cookie JWT validation plus
// identity resolution.
func (w *WebServer) AuthRequired() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{w.jwtMiddleware(), w.resolveIdentity()}
}

// OptionalIdentity resolves an identity when a valid cookie is present and
// stays silent otherwise; public pages use it to personalize output.
func (w *WebServer) OptionalIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
				if ident, err := w.identity.Resolve(c.Request().Context(), cookie.Value); err == nil {
					c.Set(identityKey, ident)
				}
			}
			return next(c)
		}
	}
}

// RequireSeller allows only sellers and admins through; it must run after
// AuthRequired.
func (w *WebServer) RequireSeller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := CurrentIdentity(c)
			if ident == nil {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			if !ident.CanSell() {
				return echo.NewHTTPError(http.StatusForbidden, "seller role required")
			}
			return next(c)
		}
	}
}

// RequireAdmin allows only admins through; it must run after AuthRequired.
func (w *WebServer) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := CurrentIdentity(c)
			if ident == nil || !ident.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}

// CurrentIdentity returns the resolved identity for this request, nil on
// public routes without a session.
func CurrentIdentity(c echo.Context) *identity.Identity {
	ident, _ := c.Get(identityKey).(*identity.Identity)
	return ident
}
