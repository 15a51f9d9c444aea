package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/Astemirdum/library-admin/console/config"
	"github.com/Astemirdum/library-admin/console/internal/console"
	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/console/internal/form"
	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/Astemirdum/library-admin/console/internal/session"
	mw "github.com/Astemirdum/library-admin/pkg/middleware"
	"github.com/Astemirdum/library-admin/pkg/validate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	readersPath  = session.DashboardPath + "/readers"
	booksPath    = session.DashboardPath + "/books"
	lendingsPath = session.DashboardPath + "/lendings"
)

type Handler struct {
	log   *zap.Logger
	cfg   config.Config
	store *Store
}

func New(log *zap.Logger, cfg config.Config, store *Store) *Handler {
	return &Handler{
		log:   log.Named("handler"),
		cfg:   cfg,
		store: store,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		appRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost},
	}))
	e.Renderer = newRenderer()
	e.Validator = validate.NewCustomValidator()

	base := e.Group("", mw.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	app := e.Group("",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		mw.NewRateLimiter(appRPS),
		h.workspaceMW,
	)
	app.GET("/", h.LoginPage)
	app.GET("/login", h.LoginPage)
	app.POST("/login", h.Login)
	app.POST("/logout", h.Logout)

	dash := app.Group(session.DashboardPath, h.guardMW)
	dash.GET("", h.Dashboard)

	entityPage[model.Reader]{
		h:     h,
		page:  console.PageReaders,
		title: "Readers",
		path:  readersPath,
		ctrl:  func(ws *console.Workspace) *console.Controller[model.Reader] { return ws.Readers },
		parse: form.Reader,
	}.register(dash.Group("/readers"))

	entityPage[model.Book]{
		h:     h,
		page:  console.PageBooks,
		title: "Books",
		path:  booksPath,
		ctrl:  func(ws *console.Workspace) *console.Controller[model.Book] { return ws.Books },
		parse: func(v url.Values) model.Book {
			return form.Book(v, time.Now().UTC())
		},
	}.register(dash.Group("/books"))

	dash.GET("/lendings", h.Lendings)
	dash.POST("/lendings", h.Lend)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Dashboard(c echo.Context) error {
	ws := workspaceFrom(c)
	ctx := c.Request().Context()
	if err := ws.Enter(ctx, console.PageDashboard); err != nil {
		h.log.Debug("enter dashboard", zap.Error(err))
	}
	return h.render(c, http.StatusOK, "dashboard", pageData{
		Title:  "Dashboard",
		Active: console.PageDashboard,
		Data:   ws.Dashboard.Load(ctx),
	})
}

type lendingView struct {
	Page     *console.LendingPage
	Records  console.Snapshot[model.Lending]
	Books    []model.Book
	Readers  []model.Reader
	Statuses []model.Status
}

func (h *Handler) lendingPage(c echo.Context, code int, draft model.Lending, fe errs.FieldErrors) error {
	ws := workspaceFrom(c)
	return h.render(c, code, "lendings", pageData{
		Title:  "Lending Management",
		Active: console.PageLendings,
		Path:   lendingsPath,
		Data: lendingView{
			Page:     ws.Lending,
			Records:  ws.Lending.Lendings.Snapshot(),
			Books:    ws.Lending.Books.Items(),
			Readers:  ws.Lending.Readers.Items(),
			Statuses: model.Statuses,
		},
		Form:   draft,
		Errors: fe,
	})
}

func (h *Handler) Lendings(c echo.Context) error {
	ws := workspaceFrom(c)
	ctx := c.Request().Context()
	if err := ws.Enter(ctx, console.PageLendings); err != nil {
		h.log.Debug("enter lendings", zap.Error(err))
	}
	if refresh(c) {
		if err := ws.Reload(ctx); err != nil {
			h.log.Debug("reload lendings", zap.Error(err))
		}
	}
	return h.lendingPage(c, http.StatusOK, model.Lending{Status: model.StatusBorrowed}, nil)
}

func (h *Handler) Lend(c echo.Context) error {
	ws := workspaceFrom(c)
	ctx := c.Request().Context()
	if err := ws.Enter(ctx, console.PageLendings); err != nil {
		h.log.Debug("enter lendings", zap.Error(err))
	}

	draft := form.Lending(formValues(c))
	if err := c.Validate(draft); err != nil {
		if fe, ok := form.Errors(err, draft); ok {
			return h.lendingPage(c, http.StatusUnprocessableEntity, draft, fe)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := ws.Lending.Lend(ctx, draft); err != nil {
		var fe errs.FieldErrors
		if errors.As(err, &fe) {
			return h.lendingPage(c, http.StatusUnprocessableEntity, draft, fe)
		}
		h.log.Debug("lend", zap.Error(err))
	}
	return c.Redirect(http.StatusSeeOther, lendingsPath)
}
