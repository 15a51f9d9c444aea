package handler

import (
	"net/http"

	md "github.com/Astemirdum/library-admin/pkg/middleware"
	"github.com/Astemirdum/library-admin/pkg/validate"
	_ "github.com/Astemirdum/library-admin/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	activitySvc ActivityService
	log         *zap.Logger
}

func New(activitySvc ActivityService, log *zap.Logger) *Handler {
	return &Handler{
		activitySvc: activitySvc,
		log:         log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead},
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	api.GET("/activity", h.ListActivity)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type listQuery struct {
	Entity string `query:"entity" validate:"omitempty,oneof=book reader lending"`
	Limit  int    `query:"limit" validate:"gte=0"`
}

// ListActivity godoc
// @Summary      Latest console activity
// @Tags         activity
// @Produce      json
// @Param        entity  query     string  false  "book, reader or lending"
// @Param        limit   query     int     false  "page size, 20 by default, 100 at most"
// @Success      200     {object}  model.List
// @Failure      400     {object}  echo.HTTPError
// @Failure      500     {object}  echo.HTTPError
// @Router       /api/v1/activity [get]
func (h *Handler) ListActivity(c echo.Context) error {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "limit is invalid")
	}
	if err := c.Validate(q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	list, err := h.activitySvc.List(c.Request().Context(), q.Entity, q.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}
