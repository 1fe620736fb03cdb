// Package webserver hosts the echo application: routing, session and
// authentication middleware, static uploads.
package webserver

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Iam-Iftekhar/animerch/config"
	"github.com/Iam-Iftekhar/animerch/internal/identity"
)

const (
	// AccessTokenCookie carries the signed session assertion.
	AccessTokenCookie = "access_token"

	sessionName = "animerch_session"
)

type WebServer struct {
	cfg      *config.AppConfig
	root     *echo.Echo
	identity *identity.Service
}

func New(cfg *config.AppConfig, identitySvc *identity.Service) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = JsonSerializer{}

	e.Use(middleware.Recover())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(cfg.Web.Secret))))
	e.Use(requestLogger())

	e.Static("/static/uploads", cfg.Web.UploadDir)
	e.Static("/static", filepath.Join(cfg.System.Workdir, "static"))

	return &WebServer{cfg: cfg, root: e, identity: identitySvc}
}

func (w *WebServer) Echo() *echo.Echo {
	return w.root
}

func (w *WebServer) Config() *config.AppConfig {
	return w.cfg
}

// Start serves until the listener fails or Shutdown is called.
func (w *WebServer) Start() error {
	addr := w.cfg.GetWebAddr()
	zap.L().Info("starting web server", zap.String("addr", addr))
	err := w.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (w *WebServer) Shutdown(ctx context.Context) error {
	return w.root.Shutdown(ctx)
}

// SetTokenCookie installs the session token as an HttpOnly cookie.
func (w *WebServer) SetTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie expires the session cookie; there is no server side
// revocation, expiry is the only other bound.
func (w *WebServer) ClearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	})
}

// SetFlash stores a one-shot notice in the browser session.
func SetFlash(c echo.Context, msg string) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return
	}
	sess.AddFlash(msg)
	_ = sess.Save(c.Request(), c.Response())
}

// TakeFlash pops any pending notices.
func TakeFlash(c echo.Context) []string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) > 0 {
		_ = sess.Save(c.Request(), c.Response())
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}

// ShutdownTimeout bounds the drain on exit.
const ShutdownTimeout = 10 * time.Second
