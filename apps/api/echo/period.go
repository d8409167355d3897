package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core/period"
)

type periodApi struct {
	svc *period.Service
}

func registerPeriodAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *period.Service) {
	api := periodApi{svc: svc}

	pg := g.Group("/periodos", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create, rectorMiddleware())
	pg.GET("/actual", api.latest)
	pg.GET("/buscar", api.search)

	dg := pg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, rectorMiddleware())
	dg.DELETE("", api.destroy, rectorMiddleware())
}

func (api *periodApi) create(ctx echo.Context) error {
	var data period.NewPeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPeriod")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating period")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *periodApi) query(ctx echo.Context) error {
	periods, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying periods")
	}
	if periods == nil {
		periods = []period.Period{}
	}
	return ctx.JSON(http.StatusOK, periods)
}

// latest returns the most recently created school period.
func (api *periodApi) latest(ctx echo.Context) error {
	p, err := api.svc.Latest(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "finding latest period")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *periodApi) search(ctx echo.Context) error {
	periods, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam("q"))
	if err != nil {
		return errors.Wrap(err, "searching periods")
	}
	if periods == nil {
		periods = []period.Period{}
	}
	return ctx.JSON(http.StatusOK, periods)
}

func (api *periodApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	p, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding period by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *periodApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data period.UpdatePeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePeriod")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding period by ID")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating period")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *periodApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting period")
	}
	return ctx.NoContent(http.StatusNoContent)
}
