package handler

import (
	"net/http"
	"net/url"

	"github.com/Astemirdum/library-admin/console/internal/console"
	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/console/internal/form"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// entityPage serves the table, form and delete dialog of one entity page.
type entityPage[T any] struct {
	h     *Handler
	page  console.Page
	title string
	path  string
	ctrl  func(ws *console.Workspace) *console.Controller[T]
	parse func(v url.Values) T
}

func (p entityPage[T]) register(g *echo.Group) {
	g.GET("", p.list)
	g.GET("/new", p.add)
	g.GET("/:id/edit", p.edit)
	g.GET("/:id/delete", p.confirmDelete)
	g.POST("", p.create)
	g.POST("/dismiss", p.dismiss)
	g.POST("/:id", p.update)
	g.POST("/:id/delete", p.remove)
}

// enter mounts the page unless it is already shown.
func (p entityPage[T]) enter(c echo.Context) (*console.Workspace, *console.Controller[T]) {
	ws := workspaceFrom(c)
	if err := ws.Enter(c.Request().Context(), p.page); err != nil {
		p.h.log.Debug("enter", zap.String("page", string(p.page)), zap.Error(err))
	}
	return ws, p.ctrl(ws)
}

func (p entityPage[T]) show(c echo.Context, code int, ctrl *console.Controller[T], draft *T, fe errs.FieldErrors) error {
	snap := ctrl.Snapshot()
	var formValue T
	switch {
	case draft != nil:
		formValue = *draft
	case snap.Selected != nil:
		formValue = *snap.Selected
	}
	return p.h.render(c, code, string(p.page), pageData{
		Title:  p.title,
		Active: p.page,
		Path:   p.path,
		Data:   snap,
		Form:   formValue,
		Errors: fe,
	})
}

func (p entityPage[T]) back(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, p.path)
}

// list shows the page as it is kept locally; ?refresh=1 fetches it again.
func (p entityPage[T]) list(c echo.Context) error {
	ws, ctrl := p.enter(c)
	if refresh(c) {
		if err := ws.Reload(c.Request().Context()); err != nil {
			p.h.log.Debug("reload", zap.String("page", string(p.page)), zap.Error(err))
		}
	}
	return p.show(c, http.StatusOK, ctrl, nil, nil)
}

func (p entityPage[T]) add(c echo.Context) error {
	_, ctrl := p.enter(c)
	ctrl.BeginCreate()
	return p.show(c, http.StatusOK, ctrl, nil, nil)
}

func (p entityPage[T]) edit(c echo.Context) error {
	_, ctrl := p.enter(c)
	if err := ctrl.BeginEdit(c.Param("id")); err != nil {
		return p.back(c)
	}
	return p.show(c, http.StatusOK, ctrl, nil, nil)
}

func (p entityPage[T]) confirmDelete(c echo.Context) error {
	_, ctrl := p.enter(c)
	if err := ctrl.BeginDelete(c.Param("id")); err != nil {
		return p.back(c)
	}
	return p.show(c, http.StatusOK, ctrl, nil, nil)
}

func (p entityPage[T]) dismiss(c echo.Context) error {
	_, ctrl := p.enter(c)
	ctrl.Dismiss()
	return p.back(c)
}

// create shows the form again when the draft is invalid or the API refused
// it; no request is sent for an invalid draft.
func (p entityPage[T]) create(c echo.Context) error {
	_, ctrl := p.enter(c)
	ctrl.BeginCreate()
	draft := p.parse(formValues(c))
	if err := c.Validate(draft); err != nil {
		fe, ok := form.Errors(err, draft)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return p.show(c, http.StatusUnprocessableEntity, ctrl, &draft, fe)
	}
	if _, err := ctrl.Create(c.Request().Context(), draft); err != nil {
		return p.show(c, http.StatusOK, ctrl, &draft, nil)
	}
	return p.back(c)
}

func (p entityPage[T]) update(c echo.Context) error {
	_, ctrl := p.enter(c)
	id := c.Param("id")
	draft := p.parse(formValues(c))
	if err := c.Validate(draft); err != nil {
		fe, ok := form.Errors(err, draft)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := ctrl.BeginEdit(id); err != nil {
			return p.back(c)
		}
		return p.show(c, http.StatusUnprocessableEntity, ctrl, &draft, fe)
	}
	if _, err := ctrl.Update(c.Request().Context(), id, draft); err != nil {
		p.h.log.Debug("update", zap.String("id", id), zap.Error(err))
	}
	return p.back(c)
}

func (p entityPage[T]) remove(c echo.Context) error {
	_, ctrl := p.enter(c)
	id := c.Param("id")
	if err := ctrl.Delete(c.Request().Context(), id); err != nil {
		p.h.log.Debug("delete", zap.String("id", id), zap.Error(err))
	}
	return p.back(c)
}
