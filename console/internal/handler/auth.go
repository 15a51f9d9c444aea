package handler

import (
	"context"
	"net/http"

	"github.com/Astemirdum/library-admin/console/internal/console"
	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/console/internal/form"
	"github.com/Astemirdum/library-admin/console/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const workspaceKey = "workspace"

func workspaceFrom(c echo.Context) *console.Workspace {
	return c.Get(workspaceKey).(*console.Workspace)
}

// workspaceMW attaches the browser's workspace, creating it on the first
// visit, and runs the silent refresh once per workspace.
func (h *Handler) workspaceMW(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws := h.workspace(c)
		c.Set(workspaceKey, ws)
		c.Response().Before(func() {
			h.mirrorRefreshCookie(c, ws)
		})

		req := c.Request()
		navigate, started := ws.Bootstrap(context.WithoutCancel(req.Context()), req.URL.Path)
		if started && navigate != "" && req.Method == http.MethodGet {
			return c.Redirect(http.StatusSeeOther, navigate)
		}
		return next(c)
	}
}

func (h *Handler) workspace(c echo.Context) *console.Workspace {
	if ck, err := c.Cookie(h.cfg.Session.CookieName); err == nil {
		if ws, ok := h.store.Get(ck.Value); ok {
			return ws
		}
	}
	ws := h.store.New()
	if ck, err := c.Cookie(h.cfg.API.RefreshCookie); err == nil && ck.Value != "" {
		ws.Client.SetCookies([]*http.Cookie{{Name: ck.Name, Value: ck.Value, Path: "/"}})
	}
	c.SetCookie(h.cookie(h.cfg.Session.CookieName, ws.ID))
	h.log.Debug("new workspace", zap.String("id", ws.ID))
	return ws
}

// mirrorRefreshCookie hands the remote refresh cookie of a logged in session
// to the browser so that a later workspace of the same browser can refresh
// silently.
func (h *Handler) mirrorRefreshCookie(c echo.Context, ws *console.Workspace) {
	if !ws.Session.IsLoggedIn() {
		return
	}
	for _, remote := range ws.Client.Cookies() {
		if remote.Name != h.cfg.API.RefreshCookie {
			continue
		}
		if cur, err := c.Cookie(remote.Name); err == nil && cur.Value == remote.Value {
			return
		}
		c.SetCookie(h.cookie(remote.Name, remote.Value))
		return
	}
}

func (h *Handler) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) expireCookie(c echo.Context, name string) {
	ck := h.cookie(name, "")
	ck.MaxAge = -1
	c.SetCookie(ck)
}

// guardMW keeps anonymous visitors out of the dashboard.
func (h *Handler) guardMW(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws := workspaceFrom(c)
		if ws.Session.IsAuthenticating() {
			return h.render(c, http.StatusOK, "loading", pageData{Title: "Loading", Path: c.Request().URL.Path})
		}
		if !ws.Session.IsLoggedIn() {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

func (h *Handler) LoginPage(c echo.Context) error {
	ws := workspaceFrom(c)
	if ws.Session.IsAuthenticating() {
		return h.render(c, http.StatusOK, "loading", pageData{Title: "Loading", Path: c.Request().URL.Path})
	}
	if ws.Session.IsLoggedIn() {
		return c.Redirect(http.StatusSeeOther, session.DashboardPath)
	}
	return h.render(c, http.StatusOK, "login", pageData{Title: "Login"})
}

func (h *Handler) Login(c echo.Context) error {
	ws := workspaceFrom(c)
	req := form.Login(formValues(c))

	if err := c.Validate(req); err != nil {
		fe, ok := form.Errors(err, req)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return h.render(c, http.StatusUnprocessableEntity, "login", pageData{
			Title:  "Login",
			Form:   req.Email,
			Errors: fe,
		})
	}

	code, err := ws.Session.Authenticate(c.Request().Context(), req)
	if err != nil {
		h.log.Info("login failed", zap.Int("status", code), zap.Error(err))
		msg := "Login failed"
		var se *errs.StatusError
		if errors.As(err, &se) && se.Code < http.StatusInternalServerError && se.Message != "" {
			msg = se.Message
		}
		if code < http.StatusBadRequest {
			code = http.StatusBadGateway
		}
		return h.render(c, code, "login", pageData{
			Title:   "Login",
			Form:    req.Email,
			Message: msg,
		})
	}
	return c.Redirect(http.StatusSeeOther, session.DashboardPath)
}

// Logout ends the browser session: the workspace is disposed and both
// cookies are dropped.
func (h *Handler) Logout(c echo.Context) error {
	ws := workspaceFrom(c)
	ws.Session.Logout()
	h.store.Delete(ws.ID)
	h.expireCookie(c, h.cfg.Session.CookieName)
	h.expireCookie(c, h.cfg.API.RefreshCookie)
	return c.Redirect(http.StatusSeeOther, "/login")
}
